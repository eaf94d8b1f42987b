package main

//
//  @title           carteirapulse API
//  @version         1.0
//  @description     Brokerage statement import & portfolio aggregation service.
//  @termsOfService  https://github.com/guttosm/carteirapulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/carteirapulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        import
//  @tag.description Statement import endpoints
//
//  @tag.name        portfolio
//  @tag.description Positions and annual/overall summaries
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/carteirapulse/config"
	_ "github.com/guttosm/carteirapulse/docs" // swagger docs
	"github.com/guttosm/carteirapulse/internal/app"
	"github.com/guttosm/carteirapulse/internal/importer"
	"github.com/guttosm/carteirapulse/internal/logger"
	"github.com/guttosm/carteirapulse/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up
// resources when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the carteirapulse application.
//
// Modes (selected via --mode flag):
//   - import: Imports brokerage statement .xlsx files for one user.
//   - api:    Starts the REST API exposing positions and summaries.
//
// Flags:
//   - --mode:     Execution mode ("import" or "api"). Default: "import".
//   - --file:     Single statement .xlsx file to import.
//   - --dir:      Directory with statement .xlsx files (used when --file is empty).
//   - --user:     User identifier the operations belong to (required for import).
//   - --parallel: How many files to parse concurrently (0=auto up to CPU, max 7).
//   - --port:     Port for API mode. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	mode := flag.String("mode", "import", "Mode: import or api")
	file := flag.String("file", "", "Statement .xlsx file to import")
	dir := flag.String("dir", "./data/input", "Directory with statement .xlsx files")
	user := flag.String("user", "", "User identifier owning the imported operations")
	parallel := flag.Int("parallel", 0, "How many files to parse concurrently (0=auto up to CPU, max 7)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "import":
		if *user == "" {
			logger.L().Fatal().Msg("--user is required in import mode")
		}

		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		repo := storage.NewOperationsRepository(db)
		if err := repo.EnsureSchema(); err != nil {
			logger.L().Fatal().Err(err).Msg("schema init error")
		}

		var summary = struct {
			rows, imported, dupes int
		}{}

		if *file != "" {
			s, err := importer.ImportFile(ctx, repo, *user, *file)
			if err != nil {
				logger.L().Fatal().Err(err).Msg("import failed")
			}
			summary.rows, summary.imported, summary.dupes = s.TotalRowsRead, s.TotalImported, s.TotalSkippedDuplicate
		} else {
			s, err := importer.ProcessDirectory(ctx, repo, *user, *dir, *parallel)
			if err != nil {
				logger.L().Fatal().Err(err).Msg("import failed")
			}
			summary.rows, summary.imported, summary.dupes = s.TotalRowsRead, s.TotalImported, s.TotalSkippedDuplicate
		}

		logger.L().Info().
			Int("rows_read", summary.rows).
			Int("imported", summary.imported).
			Int("duplicates", summary.dupes).
			Msg("import completed successfully")

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
