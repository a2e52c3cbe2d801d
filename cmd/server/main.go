// Package main is the ordering backend server binary. The CLI surface is a
// plain switch over three subcommands (serve, migrate, version) instead of a
// cobra tree, small enough to read in one place. serve auto-migrates the
// schema on startup so a freshly deployed container never needs a separate
// migration step.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freshgreens/ordering-backend/internal/api"
	"github.com/freshgreens/ordering-backend/internal/auth"
	"github.com/freshgreens/ordering-backend/internal/config"
	"github.com/freshgreens/ordering-backend/internal/db"
	"github.com/freshgreens/ordering-backend/internal/telemetry"

	// Storage backends register themselves with the storage factory at init time.
	_ "github.com/freshgreens/ordering-backend/internal/storage/local"
	_ "github.com/freshgreens/ordering-backend/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	// version must work without a config file present.
	if command == "version" {
		fmt.Printf("ordering-backend %s (commit %s, built %s)\n", api.Version, api.Commit, api.BuildDate)
		return nil
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch command {
	case "serve":
		return serve(cfg)
	case "migrate":
		if len(os.Args) < 3 {
			return fmt.Errorf("usage: %s migrate <up|down>", os.Args[0])
		}
		return migrateCommand(cfg, os.Args[2])
	default:
		return fmt.Errorf("unknown command: %s\nAvailable commands: serve, migrate, version", command)
	}
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

func serve(cfg *config.Config) error {
	// Logger first, so everything after it comes out in the configured
	// format and level.
	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Refuses to start in production without ORD_JWT_SECRET.
	if err := auth.ValidateJWTSecret(); err != nil {
		return fmt.Errorf("security configuration error: %w", err)
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("connected to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"name", cfg.Database.Name)

	telemetry.StartDBStatsCollector(database)

	if err := db.RunMigrations(database, "up"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if schemaVersion, dirty, err := db.GetMigrationVersion(database); err != nil {
		slog.Warn("failed to get migration version", "error", err)
	} else {
		slog.Info("database schema ready", "version", schemaVersion, "dirty", dirty)
	}

	if cfg.Telemetry.Metrics.Enabled {
		startMetricsServer(cfg.Telemetry.Metrics.PrometheusPort)
	}

	router, bgServices, err := api.NewRouter(cfg, database)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("starting server",
			"addr", cfg.Server.GetAddress(),
			"base_url", cfg.Server.BaseURL,
			"storage_backend", cfg.Storage.DefaultBackend)

		var err error
		if tls := cfg.Security.TLS; tls.Enabled {
			slog.Info("TLS enabled", "cert", tls.CertFile, "key", tls.KeyFile)
			err = server.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Invite sweeper and rate limiter goroutines stop after in-flight
	// requests have drained.
	bgServices.Shutdown()

	slog.Info("server stopped gracefully")
	return nil
}

// startMetricsServer exposes /metrics on its own port, kept off the public
// API ingress path.
func startMetricsServer(port int) {
	addr := fmt.Sprintf(":%d", port)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		slog.Info("starting Prometheus metrics server", "addr", addr)
		srv := &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
}

func migrateCommand(cfg *config.Config, direction string) error {
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	log.Printf("Running migrations: %s", direction)
	if err := db.RunMigrations(database, direction); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	schemaVersion, dirty, err := db.GetMigrationVersion(database)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	log.Printf("Migration completed successfully. Current version: %d (dirty: %v)", schemaVersion, dirty)
	return nil
}
