// Package scheduler runs the reservation expiry sweep on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper is the job the scheduler drives.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Scheduler calls Sweeper once at start and then every Interval until the
// context passed to Run is cancelled.  A failed run is logged and retried
// on the next tick.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	log      *zap.Logger
}

func New(s Sweeper, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{sweeper: s, interval: interval, log: log.Named("scheduler")}
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("sweep scheduler started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweep scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	n, err := s.sweeper.SweepExpired(runCtx)
	if err != nil {
		s.log.Error("sweep failed", zap.Error(err))
		return
	}
	s.log.Debug("sweep finished", zap.Int64("updated", n))
}
