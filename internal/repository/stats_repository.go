package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/desk-booking/internal/model"
)

// StatsRepo runs the aggregate queries behind the admin dashboard.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// CountReservations returns the number of reservation rows in any status.
func (r *StatsRepo) CountReservations(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&n)
	return n, err
}

// CountActiveOn returns the number of ACTIVE reservations dated day.
func (r *StatsRepo) CountActiveOn(ctx context.Context, day model.Date) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE status = 'ACTIVE' AND date = ?`, day).Scan(&n)
	return n, err
}

// DailyActive groups ACTIVE reservations in [from, to] by date, ascending.
// Dates without bookings are absent.
func (r *StatsRepo) DailyActive(ctx context.Context, from, to model.Date) ([]model.DailyCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, COUNT(*) FROM reservations
		 WHERE status = 'ACTIVE' AND date >= ? AND date <= ?
		 GROUP BY date ORDER BY date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.DailyCount{}
	for rows.Next() {
		var dc model.DailyCount
		if err := rows.Scan(&dc.Date, &dc.Reservations); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// TopSeats ranks seats by ACTIVE reservations in [from, to], descending,
// ties broken by seat number.
func (r *StatsRepo) TopSeats(ctx context.Context, from, to model.Date, limit int) ([]model.SeatPopularity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.location, s.seat_number, COUNT(r.id) AS cnt
		 FROM reservations r
		 JOIN seats s ON s.id = r.seat_id
		 WHERE r.status = 'ACTIVE' AND r.date >= ? AND r.date <= ?
		 GROUP BY s.id, s.location, s.seat_number
		 ORDER BY cnt DESC, s.seat_number
		 LIMIT ?`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SeatPopularity{}
	for rows.Next() {
		var sp model.SeatPopularity
		if err := rows.Scan(&sp.SeatID, &sp.Location, &sp.SeatNumber, &sp.Reservations); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}
