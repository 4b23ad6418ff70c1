package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Voridan/giveaway-platform/internal/app"
	"github.com/Voridan/giveaway-platform/internal/common/config"
	"github.com/Voridan/giveaway-platform/internal/common/logger"
	apphttp "github.com/Voridan/giveaway-platform/internal/http"
	"github.com/Voridan/giveaway-platform/internal/workers"
)

const serviceName = "giveaway-api"

func main() {
	// Create cancellable root context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger.Init(serviceName, cfg.Debug)

	a, err := app.New(ctx, cfg, serviceName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	reconciler, err := workers.NewReconcileScheduler(ctx, a.Service, cfg.Reconcile.Interval, a.Log)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize reconcile scheduler")
	}
	reconciler.Start()
	defer func() {
		if err := reconciler.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("Reconcile scheduler shutdown failed")
		}
	}()

	router := apphttp.NewOpsRouter(apphttp.OpsConfig{
		Service:        serviceName,
		Debug:          cfg.Debug,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Checks: map[string]apphttp.HealthChecker{
			"postgres": a.Postgres,
			"redis":    a.Redis,
		},
	}, a.Log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server exited")
}
