package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
	"github.com/Voridan/giveaway-platform/internal/platform/redis"
	"github.com/Voridan/giveaway-platform/internal/service/collector"
)

// Collector runs one collection request
type Collector interface {
	Collect(ctx context.Context, req dg.CollectRequested) (*collector.Result, error)
}

type StreamConfig struct {
	Stream        string
	Group         string
	Consumer      string
	MaxConcurrent int
	Block         time.Duration
}

// RedisStreamWorker consumes collection requests from a Redis stream
// consumer group. Entries are acknowledged as soon as they are read, so a
// crash mid-run drops the request; owners can trigger collection again.
type RedisStreamWorker struct {
	rdb       goredis.Cmdable
	collector Collector
	cfg       StreamConfig
	log       zerolog.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

func NewRedisStreamWorker(rdb goredis.Cmdable, c Collector, cfg StreamConfig, log zerolog.Logger) *RedisStreamWorker {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}
	if cfg.Consumer == "" {
		cfg.Consumer = "collector-" + uuid.NewString()
	}
	return &RedisStreamWorker{
		rdb:       rdb,
		collector: c,
		cfg:       cfg,
		log: log.With().
			Str("component", "stream_worker").
			Str("stream", cfg.Stream).
			Str("consumer", cfg.Consumer).
			Logger(),
		sem: make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Start reads the stream until ctx is cancelled, then waits for running
// collections to finish.
func (w *RedisStreamWorker) Start(ctx context.Context) error {
	if err := redis.EnsureGroup(ctx, w.rdb, w.cfg.Stream, w.cfg.Group); err != nil {
		return err
	}

	w.log.Info().Int("max_concurrent", w.cfg.MaxConcurrent).Msg("Starting Redis stream worker")
	defer func() {
		w.wg.Wait()
		w.log.Info().Msg("Redis stream worker stopped")
	}()

	for {
		// Wait for a free slot before taking more work off the stream.
		select {
		case <-ctx.Done():
			return nil
		case w.sem <- struct{}{}:
		}

		msg, ok := w.readOne(ctx)
		if !ok {
			<-w.sem
			if ctx.Err() != nil {
				return nil
			}
			continue
		}

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-w.sem }()
			w.handle(ctx, msg)
		}()
	}
}

// readOne blocks for the next entry and acknowledges it immediately.
func (w *RedisStreamWorker) readOne(ctx context.Context) (goredis.XMessage, bool) {
	entries, err := w.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    w.cfg.Group,
		Consumer: w.cfg.Consumer,
		Streams:  []string{w.cfg.Stream, ">"},
		Count:    1,
		Block:    w.cfg.Block,
	}).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Error reading from stream")
			sleepCtx(ctx, time.Second)
		}
		return goredis.XMessage{}, false
	}

	for _, stream := range entries {
		for _, msg := range stream.Messages {
			if err := w.rdb.XAck(ctx, w.cfg.Stream, w.cfg.Group, msg.ID).Err(); err != nil {
				w.log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to ack message")
			}
			return msg, true
		}
	}
	return goredis.XMessage{}, false
}

func (w *RedisStreamWorker) handle(ctx context.Context, msg goredis.XMessage) {
	req, err := dg.ParseCollectRequested(msg.Values)
	if err != nil {
		w.log.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed collect request")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Int64("giveaway_id", req.GiveawayID).Msg("collection panicked")
		}
	}()

	res, err := w.collector.Collect(ctx, req)
	if err != nil {
		w.log.Error().Err(err).Str("message_id", msg.ID).Int64("giveaway_id", req.GiveawayID).Msg("collection failed")
		return
	}
	w.log.Debug().
		Str("message_id", msg.ID).
		Int64("giveaway_id", req.GiveawayID).
		Int("added", res.Added).
		Str("stop", string(res.Stop)).
		Msg("collect request processed")
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
