package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmamani/finanzas-go/internal/config"
	"github.com/rmamani/finanzas-go/internal/handler"
	"github.com/rmamani/finanzas-go/internal/infra/observability"
	"github.com/rmamani/finanzas-go/internal/infra/sqlite"
	"github.com/rmamani/finanzas-go/internal/migrate"
	"github.com/rmamani/finanzas-go/internal/notify"
	"github.com/rmamani/finanzas-go/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("database_file", cfg.DatabaseFile),
		zap.String("legacy_data_path", cfg.LegacyDataPath),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("tracing_enabled", cfg.TracingEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "finanzas")
		if err != nil {
			logger.Fatal("failed to init tracer", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store (opens the database, runs schema migrations, recovers a
	// stale schema, imports the legacy file once) ---
	manager := sqlite.NewManager(cfg.DatabaseFile, logger)
	store, err := migrate.EnsureSchema(ctx, manager, cfg.LegacyDataPath, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer manager.Close()

	// --- Change notifications ---
	notifier := notify.New(logger)

	// --- Service ---
	storageSvc := service.NewStorage(store, notifier, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(storageSvc, notifier, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  60 * time.Second,
		// No WriteTimeout: /api/v1/events holds its stream open.
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
