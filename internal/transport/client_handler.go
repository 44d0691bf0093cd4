package transport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"favorites-api/internal/domain"
	"favorites-api/internal/middleware"
	"favorites-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the client registration payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateClientRequest represents the client update payload
type UpdateClientRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email"`
}

// ClientResponse represents client account data
type ClientResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterResponse is returned on successful registration
type RegisterResponse struct {
	Client       ClientResponse `json:"client"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Client       ClientResponse `json:"client"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

func toClientResponse(user *domain.User) ClientResponse {
	return ClientResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ClientHandler handles HTTP requests for client account operations
type ClientHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(userService service.UserService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all client account routes
func (h *ClientHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/login", h.Login)
		r.Post("/refresh", h.RefreshToken)
		r.Post("/clients/register", h.Register)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/clients", h.ListClients)
			r.Get("/clients/{clientID}", h.GetClient)
			r.Put("/clients/{clientID}", h.UpdateClient)
			r.Delete("/clients/{clientID}", h.DeleteClient)
		})
	})
}

// Register handles client registration
func (h *ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, accessToken, refreshToken, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if err == service.ErrEmailTaken {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}

		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register client")
		return
	}

	h.logger.Info("Client registered successfully", zap.Int64("user_id", user.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, RegisterResponse{
		Client:       toClientResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Login handles client authentication
func (h *ClientHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.logger.Info("Client logged in successfully", zap.Int64("user_id", user.ID))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Client:       toClientResponse(user),
	})
}

// Logout handles client logout
func (h *ClientHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Logout decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// RefreshToken handles token refresh
func (h *ClientHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Refresh token validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newAccessToken, err := h.userService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if err == service.ErrInvalidToken {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		if err == service.ErrTokenExpired {
			middleware.RespondWithError(w, http.StatusUnauthorized, "refresh token expired")
			return
		}

		h.logger.Error("Token refresh failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponse{AccessToken: newAccessToken})
}

// ListClients handles listing all registered clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list clients", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}

	clients := []ClientResponse{}
	for _, user := range users {
		clients = append(clients, toClientResponse(user))
	}

	middleware.RespondWithJSON(w, http.StatusOK, clients)
}

// GetClient handles showing a single client, owner-only
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.ownedClientID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), clientID)
	if err != nil {
		if err == service.ErrUserNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "client not found")
			return
		}

		h.logger.Error("Failed to get client", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get client")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toClientResponse(user))
}

// UpdateClient handles self-service client updates, owner-only
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.ownedClientID(w, r)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Client update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), clientID, req.Name, req.Email)
	if err != nil {
		if err == service.ErrEmailTaken {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}
		if err == service.ErrUserNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "client not found")
			return
		}

		h.logger.Error("Failed to update client", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update client")
		return
	}

	h.logger.Info("Client updated successfully", zap.Int64("user_id", user.ID))
	middleware.RespondWithJSON(w, http.StatusOK, toClientResponse(user))
}

// DeleteClient handles self-service account deletion, owner-only. Favorites
// owned by the client are removed by the storage-level cascade.
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.ownedClientID(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), clientID); err != nil {
		if err == service.ErrUserNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "client not found")
			return
		}

		h.logger.Error("Failed to delete client", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete client")
		return
	}

	h.logger.Info("Client deleted successfully", zap.Int64("user_id", clientID))
	w.WriteHeader(http.StatusNoContent)
}

// ownedClientID parses the {clientID} path parameter and enforces that the
// authenticated caller matches it, writing the error response otherwise
func (h *ClientHandler) ownedClientID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	clientID, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid client ID")
		return 0, false
	}

	authenticatedID, ok := middleware.GetUserID(r.Context())
	if !ok || authenticatedID != clientID {
		middleware.RespondWithError(w, http.StatusForbidden, "unauthorized")
		return 0, false
	}

	return clientID, true
}
