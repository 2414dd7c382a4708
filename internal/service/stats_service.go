package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/iliyamo/desk-booking/internal/clock"
	"github.com/iliyamo/desk-booking/internal/model"
)

const (
	trendDays    = 7
	popularLimit = 5
)

// StatsService builds the admin dashboard.
type StatsService struct {
	seats   SeatStore
	users   UserStore
	stats   StatsStore
	sweeper *Sweeper
	clock   clock.Clock
	log     *zap.Logger
}

func NewStatsService(seats SeatStore, users UserStore, stats StatsStore, sweeper *Sweeper, clk clock.Clock, log *zap.Logger) *StatsService {
	return &StatsService{seats: seats, users: users, stats: stats, sweeper: sweeper, clock: clk, log: log.Named("stats")}
}

// Stats computes totals, today's occupancy and the trailing week's trend
// and most booked seats.
func (s *StatsService) Stats(ctx context.Context) (model.Stats, error) {
	if _, err := s.sweeper.SweepExpired(ctx); err != nil {
		return model.Stats{}, err
	}
	today := clock.Today(s.clock)
	weekAgo := today.AddDays(-trendDays)

	var (
		st  model.Stats
		err error
	)
	if st.TotalSeats, err = s.seats.CountActive(ctx); err != nil {
		return st, s.fail("count seats", err)
	}
	if st.TotalUsers, err = s.users.Count(ctx); err != nil {
		return st, s.fail("count users", err)
	}
	if st.TotalReservations, err = s.stats.CountReservations(ctx); err != nil {
		return st, s.fail("count reservations", err)
	}
	if st.TodayReservations, err = s.stats.CountActiveOn(ctx, today); err != nil {
		return st, s.fail("count today", err)
	}
	st.OccupancyRate = OccupancyRate(st.TodayReservations, st.TotalSeats)
	if st.WeeklyTrend, err = s.stats.DailyActive(ctx, weekAgo, today); err != nil {
		return st, s.fail("weekly trend", err)
	}
	if st.PopularLocations, err = s.stats.TopSeats(ctx, weekAgo, today, popularLimit); err != nil {
		return st, s.fail("popular seats", err)
	}
	return st, nil
}

// OccupancyRate is booked/seats as a whole percentage, rounded half away
// from zero.  No seats means zero occupancy.
func OccupancyRate(booked, seats int) int {
	if seats <= 0 {
		return 0
	}
	return int(math.Round(float64(booked) * 100 / float64(seats)))
}

func (s *StatsService) fail(op string, err error) error {
	s.log.Error(op, zap.Error(err))
	return internal("internal error", err)
}
