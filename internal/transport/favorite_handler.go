package transport

import (
	"net/http"
	"strconv"

	"favorites-api/internal/domain"
	"favorites-api/internal/middleware"
	"favorites-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddFavoriteRequest represents the add-favorite payload
type AddFavoriteRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
}

// FavoriteResponse is the stable output shape for a favorite product
type FavoriteResponse struct {
	ID        int64    `json:"id"`
	ProductID int64    `json:"product_id"`
	Title     string   `json:"title"`
	Price     float64  `json:"price"`
	Image     string   `json:"image"`
	Review    *float64 `json:"review"`
}

func toFavoriteResponse(favorite *domain.FavoriteProduct) FavoriteResponse {
	return FavoriteResponse{
		ID:        favorite.ID,
		ProductID: favorite.ProductID,
		Title:     favorite.Title,
		Price:     favorite.Price,
		Image:     favorite.Image,
		Review:    favorite.Review,
	}
}

// FavoriteHandler handles HTTP requests for favorite product operations
type FavoriteHandler struct {
	favoriteService service.FavoriteService
	logger          *zap.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteService service.FavoriteService, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		logger:          logger,
	}
}

// RegisterRoutes registers the favorite product routes. Both middlewares run
// on the whole subtree so the ownership gate rejects cross-client requests
// before any handler executes.
func (h *FavoriteHandler) RegisterRoutes(r chi.Router, authMiddleware, ownershipMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/clients/{clientID}/favorite-products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(ownershipMiddleware)

		r.Get("/", h.ListFavorites)
		r.Post("/", h.AddFavorite)
		r.Delete("/{productID}", h.RemoveFavorite)
	})
}

// ListFavorites handles listing a client's favorite products
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	favorites, err := h.favoriteService.ListFavorites(r.Context(), clientID)
	if err != nil {
		h.logger.Error("Failed to list favorites", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}

	response := []FavoriteResponse{}
	for _, favorite := range favorites {
		response = append(response, toFavoriteResponse(favorite))
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// AddFavorite handles pinning an external catalog product
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	var req AddFavoriteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add favorite validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	favorite, err := h.favoriteService.AddFavorite(r.Context(), clientID, req.ProductID)
	if err != nil {
		if err == service.ErrAlreadyFavorited || err == service.ErrProductNotFound {
			middleware.RespondWithJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		h.logger.Error("Failed to add favorite", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add favorite")
		return
	}

	h.logger.Info("Favorite added",
		zap.Int64("user_id", clientID),
		zap.Int64("product_id", favorite.ProductID),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toFavoriteResponse(favorite))
}

// RemoveFavorite handles removing a client's favorite product
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.clientID(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.favoriteService.RemoveFavorite(r.Context(), clientID, productID); err != nil {
		if err == service.ErrFavoriteNotFound {
			middleware.RespondWithJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		h.logger.Error("Failed to remove favorite", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove favorite")
		return
	}

	h.logger.Info("Favorite removed",
		zap.Int64("user_id", clientID),
		zap.Int64("product_id", productID),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) clientID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	clientID, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid client ID")
		return 0, false
	}
	return clientID, true
}
