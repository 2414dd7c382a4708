package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/desk-booking/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  Dates are
// DATE columns; all timestamp fields are assumed to be stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `r.id, r.user_id, r.seat_id, r.date, r.start_time, r.end_time, r.notes, r.status, r.created_at, r.updated_at`

const detailSelect = `SELECT ` + reservationColumns + `,
       s.seat_number, s.location, s.has_monitor, u.name, u.email
FROM reservations r
JOIN seats s ON s.id = r.seat_id
JOIN users u ON u.id = r.user_id`

type scanner interface{ Scan(...any) error }

func scanReservation(row scanner, extra ...any) (model.Reservation, error) {
	var (
		res               model.Reservation
		start, end, notes sql.NullString
	)
	dest := append([]any{
		&res.ID, &res.UserID, &res.SeatID, &res.Date, &start, &end, &notes, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return res, ErrReservationNotFound
		}
		return res, err
	}
	res.StartTime = nullString(start)
	res.EndTime = nullString(end)
	res.Notes = nullString(notes)
	return res, nil
}

func scanDetail(row scanner) (model.ReservationDetail, error) {
	var d model.ReservationDetail
	res, err := scanReservation(row, &d.Seat.SeatNumber, &d.Seat.Location, &d.Seat.HasMonitor, &d.User.Name, &d.User.Email)
	if err != nil {
		return d, err
	}
	d.Reservation = res
	d.Seat.ID = res.SeatID
	d.User.ID = res.UserID
	return d, nil
}

// Create inserts an ACTIVE reservation and populates ID and timestamps.  A
// unique-index violation is reported as ErrSeatTaken or
// ErrUserHasReservation; the indexes are the final arbiter when two
// requests race for the same seat.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, seat_id, date, start_time, end_time, notes, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if res.Status == "" {
		res.Status = model.StatusActive
	}
	result, err := r.db.ExecContext(ctx, q, res.UserID, res.SeatID, res.Date, res.StartTime, res.EndTime, res.Notes, res.Status)
	if err != nil {
		return reservationConflict(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*res = stored
	return nil
}

// GetByID loads a reservation without joins.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations r WHERE r.id = ?`, id))
}

// GetDetail loads a reservation joined with its seat and user.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (model.ReservationDetail, error) {
	return scanDetail(r.db.QueryRowContext(ctx, detailSelect+` WHERE r.id = ?`, id))
}

// SeatTaken reports whether an ACTIVE reservation other than excludeID
// holds seatID on date.  Pass 0 to exclude nothing.
func (r *ReservationRepo) SeatTaken(ctx context.Context, seatID uint64, date model.Date, excludeID uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE seat_id = ? AND date = ? AND status = 'ACTIVE' AND id <> ?)`,
		seatID, date, excludeID).Scan(&exists)
	return exists, err
}

// UserBooked reports whether userID holds an ACTIVE reservation other than
// excludeID on date.
func (r *ReservationRepo) UserBooked(ctx context.Context, userID uint64, date model.Date, excludeID uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE user_id = ? AND date = ? AND status = 'ACTIVE' AND id <> ?)`,
		userID, date, excludeID).Scan(&exists)
	return exists, err
}

// Update writes the mutable fields of res (date, times, notes, status) and
// refreshes it from the stored row.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
	           SET date = ?, start_time = ?, end_time = ?, notes = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, res.Date, res.StartTime, res.EndTime, res.Notes, res.Status, res.ID); err != nil {
		return reservationConflict(err)
	}
	stored, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = stored
	return nil
}

// Transition moves a reservation from one status to another only if it is
// still in the expected state.  It reports whether a row changed.
func (r *ReservationRepo) Transition(ctx context.Context, id uint64, from, to model.ReservationStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// List returns reservations matching f joined with seat and user, newest
// date first.
func (r *ReservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error) {
	q := detailSelect + ` WHERE 1=1`
	var args []any
	if f.UserID != nil {
		q += ` AND r.user_id = ?`
		args = append(args, *f.UserID)
	}
	if f.SeatID != nil {
		q += ` AND r.seat_id = ?`
		args = append(args, *f.SeatID)
	}
	if f.Status != nil {
		q += ` AND r.status = ?`
		args = append(args, *f.Status)
	}
	switch {
	case f.Date != nil:
		q += ` AND r.date = ?`
		args = append(args, *f.Date)
	default:
		if f.From != nil {
			q += ` AND r.date >= ?`
			args = append(args, *f.From)
		}
		if f.To != nil {
			q += ` AND r.date <= ?`
			args = append(args, *f.To)
		}
	}
	q += ` ORDER BY r.date DESC, r.id DESC`
	return r.queryDetails(ctx, q, args...)
}

// ActiveForSeatFrom lists ACTIVE reservations of a seat dated on or after
// from, soonest first.
func (r *ReservationRepo) ActiveForSeatFrom(ctx context.Context, seatID uint64, from model.Date) ([]model.ReservationDetail, error) {
	return r.queryDetails(ctx,
		detailSelect+` WHERE r.seat_id = ? AND r.status = 'ACTIVE' AND r.date >= ? ORDER BY r.date, r.id`,
		seatID, from)
}

func (r *ReservationRepo) queryDetails(ctx context.Context, q string, args ...any) ([]model.ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ReservationDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CompleteExpired marks lapsed ACTIVE reservations COMPLETED and returns
// the number of rows changed.  A reservation has lapsed when its date is
// before today, or when it is an all-day booking dated yesterday.  The
// statement only ever moves rows out of ACTIVE, so concurrent or repeated
// runs are harmless.
func (r *ReservationRepo) CompleteExpired(ctx context.Context, today model.Date) (int64, error) {
	const q = `UPDATE reservations
	           SET status = 'COMPLETED', updated_at = CURRENT_TIMESTAMP
	           WHERE status = 'ACTIVE'
	             AND (date < ?
	                  OR (date = ? AND start_time IS NULL AND end_time IS NULL))`
	res, err := r.db.ExecContext(ctx, q, today, today.AddDays(-1))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
