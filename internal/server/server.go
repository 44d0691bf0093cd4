package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"favorites-api/internal/catalog"
	"favorites-api/internal/config"
	custommiddleware "favorites-api/internal/middleware"
	"favorites-api/internal/repository"
	"favorites-api/internal/service"
	"favorites-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
}

// NewServer wires the repositories, catalog client, services and handlers
// together explicitly and returns a ready-to-run HTTP server
func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	// External product catalog client
	productLookup := catalog.NewClient(catalog.Config{
		BaseURL: cfg.Catalog.BaseURL,
		Timeout: cfg.Catalog.Timeout,
	})

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)
	favoriteService := service.NewFavoriteService(favoriteRepo, productLookup)

	// Initialize handlers
	clientHandler := transport.NewClientHandler(userService, logger)
	favoriteHandler := transport.NewFavoriteHandler(favoriteService, logger)

	// Create middlewares guarding the protected routes
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	ownershipMiddleware := custommiddleware.RequireClientOwnership(logger)

	// Register routes
	clientHandler.RegisterRoutes(router, authMiddleware)
	favoriteHandler.RegisterRoutes(router, authMiddleware, ownershipMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
