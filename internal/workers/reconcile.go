package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Reconciler repairs drifted participant counters
type Reconciler interface {
	ReconcileCounts(ctx context.Context) (int, error)
}

// ReconcileScheduler runs counter reconciliation once at start and then on
// a fixed interval. Overlapping runs are skipped.
type ReconcileScheduler struct {
	sched gocron.Scheduler
	log   zerolog.Logger
}

func NewReconcileScheduler(ctx context.Context, r Reconciler, interval time.Duration, log zerolog.Logger) (*ReconcileScheduler, error) {
	if interval <= 0 {
		interval = time.Hour
	}
	log = log.With().Str("component", "reconcile_scheduler").Logger()

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			runCtx, cancel := context.WithTimeout(ctx, interval)
			defer cancel()
			fixed, err := r.ReconcileCounts(runCtx)
			if err != nil {
				log.Error().Err(err).Msg("counter reconciliation failed")
				return
			}
			log.Debug().Int("fixed", fixed).Msg("counter reconciliation done")
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule reconciliation: %w", err)
	}
	return &ReconcileScheduler{sched: sched, log: log}, nil
}

func (s *ReconcileScheduler) Start() {
	s.sched.Start()
	s.log.Info().Msg("reconcile scheduler started")
}

// Shutdown waits for a running job and stops the scheduler
func (s *ReconcileScheduler) Shutdown() error {
	return s.sched.Shutdown()
}
