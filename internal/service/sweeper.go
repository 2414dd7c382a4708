package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/desk-booking/internal/clock"
	"github.com/iliyamo/desk-booking/internal/queue"
)

// Sweeper completes lapsed ACTIVE reservations.  Read paths call it
// explicitly before querying; the scheduler and the cron endpoint call it
// on their own cadence.
type Sweeper struct {
	store  ReservationStore
	clock  clock.Clock
	events EventPublisher
	cache  Invalidator
	log    *zap.Logger
}

// Invalidator drops cached responses derived from reservations.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

func NewSweeper(store ReservationStore, clk clock.Clock, events EventPublisher, log *zap.Logger) *Sweeper {
	return &Sweeper{store: store, clock: clk, events: events, log: log.Named("sweeper")}
}

// InvalidateOnChange registers a cache to retire whenever a sweep
// completes at least one reservation.
func (s *Sweeper) InvalidateOnChange(c Invalidator) { s.cache = c }

// SweepExpired marks as COMPLETED every ACTIVE reservation dated before
// today, plus all-day reservations dated yesterday, and returns how many
// rows changed.  Running it again without the date moving changes nothing.
func (s *Sweeper) SweepExpired(ctx context.Context) (int64, error) {
	today := clock.Today(s.clock)
	n, err := s.store.CompleteExpired(ctx, today)
	if err != nil {
		s.log.Error("expire reservations", zap.Stringer("today", today), zap.Error(err))
		return 0, internal("could not update expired reservations", err)
	}
	if n > 0 {
		s.log.Info("reservations completed", zap.Int64("count", n), zap.Stringer("today", today))
		publish(ctx, s.events, s.log, queue.NewExpiredEvent(n, s.clock.Now()))
		if s.cache != nil {
			s.cache.Invalidate(ctx)
		}
	}
	return n, nil
}

// publish hands ev to the broker without letting a broker outage fail the
// caller's request.
func publish(ctx context.Context, events EventPublisher, log *zap.Logger, ev queue.ReservationEvent) {
	if events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := events.Publish(ctx, ev); err != nil {
		log.Warn("publish event failed", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}
