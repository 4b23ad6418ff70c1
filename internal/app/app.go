package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Voridan/giveaway-platform/internal/cache/redis"
	"github.com/Voridan/giveaway-platform/internal/common/config"
	"github.com/Voridan/giveaway-platform/internal/common/logger"
	"github.com/Voridan/giveaway-platform/internal/platform/postgres"
	redisp "github.com/Voridan/giveaway-platform/internal/platform/redis"
	pgrepo "github.com/Voridan/giveaway-platform/internal/repository/postgres"
	"github.com/Voridan/giveaway-platform/internal/service/collector"
	giveawaysvc "github.com/Voridan/giveaway-platform/internal/service/giveaway"
	"github.com/Voridan/giveaway-platform/internal/service/instagram"
	"github.com/Voridan/giveaway-platform/internal/service/notifications"
)

// App holds the wired dependencies shared by every binary.
type App struct {
	Config *config.Config
	Log    zerolog.Logger

	Postgres  *postgres.Client
	Redis     *redisp.Client
	Publisher *redisp.StreamPublisher

	Giveaways *pgrepo.GiveawayRepository
	Users     *redis.UserCache

	Notifications *notifications.Service
	Service       *giveawaysvc.Service
}

// New connects to Postgres and Redis, migrates when configured, and wires services.
func New(ctx context.Context, cfg *config.Config, service string) (*App, error) {
	log := logger.Component(service)

	if cfg.Postgres.AutoMigrate {
		if err := postgres.MigrateUp(cfg.Postgres.GetDSN()); err != nil {
			return nil, err
		}
	}

	pg, err := postgres.NewClient(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}

	rdb, err := redisp.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("Redis client initialized")

	publisher := redisp.NewStreamPublisher(rdb, cfg.Streams.MaxLen)
	giveaways := pgrepo.NewGiveawayRepository(pg.GetDB())
	users := redis.NewUserCache(rdb, pgrepo.NewUserRepository(pg.GetDB()), cfg.Cache.UserTTL, log)
	notifier := notifications.NewService(publisher, users, cfg.Streams.Mail, cfg.Mail.From, log)
	svc := giveawaysvc.NewService(giveaways, users, notifier, publisher, cfg.Streams.CollectComments, log)

	return &App{
		Config:        cfg,
		Log:           log,
		Postgres:      pg,
		Redis:         rdb,
		Publisher:     publisher,
		Giveaways:     giveaways,
		Users:         users,
		Notifications: notifier,
		Service:       svc,
	}, nil
}

// NewCollector wires the collection algorithm against the configured upstream.
func (a *App) NewCollector() *collector.Service {
	cfg := a.Config
	source := instagram.NewClient(instagram.Config{
		BaseURL: cfg.Instagram.BaseURL,
		APIKey:  cfg.Instagram.APIKey,
		APIHost: cfg.Instagram.APIHost,
		Timeout: cfg.Collector.RequestTimeout,
	})
	return collector.NewService(source, a.Giveaways, collector.Config{
		MaxPages:       cfg.Collector.MaxPages,
		RequestTimeout: cfg.Collector.RequestTimeout,
		Retries:        cfg.Collector.Retries,
		RetryBackoff:   cfg.Collector.RetryBackoff,
		BatchSize:      cfg.Collector.BatchSize,
	}, a.Log)
}

func (a *App) Close() error {
	var firstErr error
	if err := a.Redis.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close redis: %w", err)
	}
	if err := a.Postgres.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close postgres: %w", err)
	}
	return firstErr
}
