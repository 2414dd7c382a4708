package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/desk-booking/internal/model"
)

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

const seatColumns = `s.id, s.seat_number, s.location, s.has_monitor, s.description, s.is_active, s.created_at, s.updated_at`

func scanSeat(row interface{ Scan(...any) error }) (model.Seat, error) {
	var (
		s    model.Seat
		desc sql.NullString
	)
	err := row.Scan(&s.ID, &s.SeatNumber, &s.Location, &s.HasMonitor, &desc, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, ErrSeatNotFound
		}
		return s, err
	}
	s.Description = nullString(desc)
	return s, nil
}

// Create inserts a single seat record. On success the seat's ID and
// timestamps are populated from the stored row.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	const q = `INSERT INTO seats (seat_number, location, has_monitor, description, is_active)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.SeatNumber, s.Location, s.HasMonitor, s.Description, s.IsActive)
	if err != nil {
		if _, dup := duplicateKey(err); dup {
			return ErrDuplicateSeatNumber
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = stored
	return nil
}

// GetByID retrieves a seat by its id regardless of its active flag.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (model.Seat, error) {
	return scanSeat(r.db.QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats s WHERE s.id = ?`, id))
}

// GetByNumber retrieves a seat by its unique seat number.
func (r *SeatRepo) GetByNumber(ctx context.Context, number string) (model.Seat, error) {
	return scanSeat(r.db.QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats s WHERE s.seat_number = ?`,
		strings.TrimSpace(number)))
}

// Update applies a partial update and returns the stored row.  Nil patch
// fields keep their current value.
func (r *SeatRepo) Update(ctx context.Context, id uint64, p model.SeatPatch) (model.Seat, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if p.SeatNumber != nil {
		sets = append(sets, "seat_number = ?")
		args = append(args, strings.TrimSpace(*p.SeatNumber))
	}
	if p.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *p.Location)
	}
	if p.HasMonitor != nil {
		sets = append(sets, "has_monitor = ?")
		args = append(args, *p.HasMonitor)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *p.IsActive)
	}
	if len(sets) > 0 {
		args = append(args, id)
		q := `UPDATE seats SET ` + strings.Join(sets, ", ") + `, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			if _, dup := duplicateKey(err); dup {
				return model.Seat{}, ErrDuplicateSeatNumber
			}
			return model.Seat{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Deactivate soft-deletes a seat by clearing its active flag.
func (r *SeatRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE seats SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows when the value is unchanged; confirm existence.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// CountActive returns the number of bookable seats.
func (r *SeatRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats WHERE is_active = TRUE`).Scan(&n)
	return n, err
}

// ListAvailability returns every active seat ordered by seat number,
// joined with the ACTIVE reservation (if any) it holds on date.  Location
// and monitor filters are applied in SQL; availability filtering is left to
// the caller.
func (r *SeatRepo) ListAvailability(ctx context.Context, date model.Date, f model.SeatFilter) ([]model.SeatAvailability, error) {
	q := `SELECT s.id, s.seat_number, s.location, s.has_monitor, s.description,
	             r.date, u.name, u.email
	      FROM seats s
	      LEFT JOIN reservations r ON r.seat_id = s.id AND r.date = ? AND r.status = 'ACTIVE'
	      LEFT JOIN users u ON u.id = r.user_id
	      WHERE s.is_active = TRUE`
	args := []any{date}
	if f.Location != nil {
		q += ` AND s.location = ?`
		args = append(args, *f.Location)
	}
	if f.HasMonitor != nil {
		q += ` AND s.has_monitor = ?`
		args = append(args, *f.HasMonitor)
	}
	q += ` ORDER BY s.seat_number`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SeatAvailability{}
	for rows.Next() {
		var (
			a           model.SeatAvailability
			desc        sql.NullString
			resDate     model.Date
			name, email sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.SeatNumber, &a.Location, &a.HasMonitor, &desc, &resDate, &name, &email); err != nil {
			return nil, err
		}
		a.Description = nullString(desc)
		a.IsAvailable = resDate.IsZero()
		if !a.IsAvailable {
			d := resDate
			a.ReservedDate = &d
			a.ReservedBy = &model.Occupant{Name: name.String, Email: email.String}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAdmin returns all active seats with the ACTIVE reservation held on
// today and the seat's lifetime ACTIVE reservation count.
func (r *SeatRepo) ListAdmin(ctx context.Context, today model.Date) ([]model.AdminSeat, error) {
	q := `SELECT ` + seatColumns + `,
	             (SELECT COUNT(*) FROM reservations x WHERE x.seat_id = s.id AND x.status = 'ACTIVE'),
	             r.id, r.user_id, r.date, r.start_time, r.end_time, r.notes, r.status, r.created_at, r.updated_at,
	             u.name, u.email
	      FROM seats s
	      LEFT JOIN reservations r ON r.seat_id = s.id AND r.date = ? AND r.status = 'ACTIVE'
	      LEFT JOIN users u ON u.id = r.user_id
	      WHERE s.is_active = TRUE
	      ORDER BY s.seat_number`
	rows, err := r.db.QueryContext(ctx, q, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AdminSeat{}
	for rows.Next() {
		var (
			a                    model.AdminSeat
			desc                 sql.NullString
			resID, userID        sql.NullInt64
			resDate              model.Date
			start, end, notes    sql.NullString
			status               sql.NullString
			createdAt, updatedAt sql.NullTime
			userName, userEmail  sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &a.SeatNumber, &a.Location, &a.HasMonitor, &desc, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
			&a.TotalReservations,
			&resID, &userID, &resDate, &start, &end, &notes, &status, &createdAt, &updatedAt,
			&userName, &userEmail,
		); err != nil {
			return nil, err
		}
		a.Description = nullString(desc)
		if resID.Valid {
			a.CurrentReservation = &model.ReservationDetail{
				Reservation: model.Reservation{
					ID:        uint64(resID.Int64),
					UserID:    uint64(userID.Int64),
					SeatID:    a.ID,
					Date:      resDate,
					StartTime: nullString(start),
					EndTime:   nullString(end),
					Notes:     nullString(notes),
					Status:    model.ReservationStatus(status.String),
					CreatedAt: createdAt.Time,
					UpdatedAt: updatedAt.Time,
				},
				Seat: model.SeatRef{ID: a.ID, SeatNumber: a.SeatNumber, Location: a.Location, HasMonitor: a.HasMonitor},
				User: model.UserRef{ID: uint64(userID.Int64), Name: userName.String, Email: userEmail.String},
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
