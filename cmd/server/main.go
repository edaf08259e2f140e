package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/dsr/internal/auth"
	"github.com/JonMunkholm/dsr/internal/config"
	"github.com/JonMunkholm/dsr/internal/core"
	"github.com/JonMunkholm/dsr/internal/database"
	"github.com/JonMunkholm/dsr/internal/logging"
	"github.com/JonMunkholm/dsr/internal/reconcile"
	"github.com/JonMunkholm/dsr/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"outlet", cfg.Outlet.Name,
		"opening_balance", cfg.Outlet.OpeningBalance.String(),
		"time_zone", cfg.Outlet.TimeZone,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"require_auth", cfg.Security.RequireAuth,
	)

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := core.NewPostgresStore(pool)
	service := core.NewService(store, core.ServiceConfig{
		Calculator:           reconcile.NewCalculator(cfg.Outlet.OpeningBalance, cfg.Outlet.Notes),
		Location:             cfg.Outlet.Location(),
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		MaxImportWait:        cfg.Import.MaxWaitTime,
		ImportTimeout:        cfg.Import.Timeout,
	})

	authService := auth.NewService(
		auth.NewPostgresUserStore(pool),
		auth.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL),
	)

	server := web.NewServer(service, authService, cfg, store)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	if _, err := service.StartArchiveScheduler(jobCtx, core.ArchiveConfig{
		Schedule:              cfg.Archive.Schedule,
		HotRetentionDays:      cfg.Archive.HotRetentionDays,
		ArchiveRetentionYears: cfg.Archive.ArchiveRetentionYears,
		BatchSize:             cfg.Archive.BatchSize,
	}); err != nil {
		slog.Error("failed to start archive scheduler", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active imports to complete (with timeout)
		if active := service.Limiter().ActiveCount(); active > 0 {
			slog.Info("waiting for imports to complete", "active", active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		// Hijacked feed connections are not tracked by http.Server.
		service.Hub().Close()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
