package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Voridan/giveaway-platform/internal/app"
	"github.com/Voridan/giveaway-platform/internal/common/config"
	"github.com/Voridan/giveaway-platform/internal/common/logger"
	apphttp "github.com/Voridan/giveaway-platform/internal/http"
	"github.com/Voridan/giveaway-platform/internal/workers"
)

const serviceName = "participants-collector"

func main() {
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

	worker := workers.NewRedisStreamWorker(a.Redis, a.NewCollector(), workers.StreamConfig{
		Stream:        cfg.Streams.CollectComments,
		Group:         cfg.Streams.ConsumerGroup,
		MaxConcurrent: cfg.Collector.Workers,
	}, a.Log)

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Collector.OpsPort),
		Handler: apphttp.NewOpsRouter(apphttp.OpsConfig{
			Service: serviceName,
			Debug:   cfg.Debug,
			Checks: map[string]apphttp.HealthChecker{
				"postgres": a.Postgres,
				"redis":    a.Redis,
			},
		}, a.Log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Start(gctx)
	})
	g.Go(func() error {
		logger.Info().Int("port", cfg.Collector.OpsPort).Msg("Starting ops server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Collector stopped with error")
		return
	}
	logger.Info().Msg("Collector exited")
}
