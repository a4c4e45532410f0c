/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the sick pay engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Build the slog logger
  3. Open the store selected by DB_DRIVER (sqlite or postgres)
  4. Create API handler with the sickness services
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port    HTTP server port (APP_PORT, default: 8080)
  -db      SQLite database path (SQLITE_PATH, default: sickpay.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  APP_ENV, LOG_LEVEL, DB_DRIVER, DATABASE_URL, REPORT_BATCH_SIZE,
  CORS_ALLOWED_ORIGINS. See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/sickpay.db"

  # Run against PostgreSQL
  DB_DRIVER=postgres DATABASE_URL=postgres://localhost/sickpay ./server
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/sickpay-engine/api"
	"github.com/warp/sickpay-engine/config"
	"github.com/warp/sickpay-engine/logging"
	"github.com/warp/sickpay-engine/sickness"
	"github.com/warp/sickpay-engine/store/postgres"
	"github.com/warp/sickpay-engine/store/sqlite"
)

// closableStore is a store the server owns and must close on shutdown.
type closableStore interface {
	sickness.Store
	Close() error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// run owns every resource main opens, so its deferred cleanup always runs
// before the process exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Flags
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.SQLitePath, "SQLite database path")
	flag.Parse()
	cfg.App.Port = *port
	cfg.Database.SQLitePath = *dbPath

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.App.LogLevel), cfg.App.Env)
	slog.SetDefault(logger)

	// Initialize store
	store, err := openStore(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "driver", cfg.Database.Driver, "error", err)
		return fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	defer store.Close()

	// Initialize handler and router
	handler := api.NewHandler(store, logger, cfg.Report.BatchSize)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AccessLog:      true,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Server starting",
		"addr", fmt.Sprintf("http://localhost:%d", cfg.App.Port),
		"driver", cfg.Database.Driver,
		"report_batch_size", cfg.Report.BatchSize)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return serve(server, quit, logger)
}

// serve runs server until quit fires or the listener fails, then shuts it
// down with a 30s grace period. Listener errors are returned, never fatal.
func serve(server *http.Server, quit <-chan os.Signal, logger *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
	case err := <-serveErr:
		logger.Error("Server failed", "error", err)
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (closableStore, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		store, err := postgres.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := sqlite.New(cfg.Database.SQLitePath)
	if err != nil {
		return nil, err
	}
	return store, nil
}
