package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/carteirapulse/config"
	"github.com/guttosm/carteirapulse/internal/api"
	"github.com/guttosm/carteirapulse/internal/service"
	"github.com/guttosm/carteirapulse/internal/storage"
)

// InitializeApp sets up all application dependencies and returns a fully
// configured Gin router, a cleanup function for graceful shutdown, and any
// error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL and ensures the operations schema exists.
//   - Initializes the repository layer (OperationsRepository).
//   - Creates the service and HTTP handler layers.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	repo := storage.NewOperationsRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	svc := service.NewPortfolioService(repo)
	handler := api.NewHandler(svc)
	router := api.NewRouter(handler)

	healthHandler := api.NewHealthHandler(db.Ping)
	healthHandler.Register(router)

	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
