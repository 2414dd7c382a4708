package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/desk-booking/internal/clock"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/repository"
)

// SeatService answers seat availability queries and manages the inventory.
type SeatService struct {
	seats        SeatStore
	reservations ReservationStore
	sweeper      *Sweeper
	clock        clock.Clock
	log          *zap.Logger
}

func NewSeatService(seats SeatStore, reservations ReservationStore, sweeper *Sweeper, clk clock.Clock, log *zap.Logger) *SeatService {
	return &SeatService{seats: seats, reservations: reservations, sweeper: sweeper, clock: clk, log: log.Named("seats")}
}

// Availability lists active seats with their state on date (today when
// zero).  A seat is available iff no ACTIVE reservation holds it that day.
func (s *SeatService) Availability(ctx context.Context, date model.Date, f model.SeatFilter) ([]model.SeatAvailability, error) {
	if _, err := s.sweeper.SweepExpired(ctx); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = clock.Today(s.clock)
	}
	rows, err := s.seats.ListAvailability(ctx, date, f)
	if err != nil {
		return nil, s.fail("list availability", err)
	}
	if f.Available == nil {
		return rows, nil
	}
	out := rows[:0]
	for _, r := range rows {
		if r.IsAvailable == *f.Available {
			out = append(out, r)
		}
	}
	return out, nil
}

// Get returns an active seat with its ACTIVE reservations from today on.
func (s *SeatService) Get(ctx context.Context, id uint64) (model.SeatDetail, error) {
	seat, err := s.activeSeat(ctx, id)
	if err != nil {
		return model.SeatDetail{}, err
	}
	if _, err := s.sweeper.SweepExpired(ctx); err != nil {
		return model.SeatDetail{}, err
	}
	upcoming, err := s.reservations.ActiveForSeatFrom(ctx, seat.ID, clock.Today(s.clock))
	if err != nil {
		return model.SeatDetail{}, s.fail("list seat reservations", err)
	}
	return model.SeatDetail{Seat: seat, Reservations: upcoming}, nil
}

// AdminList returns the inventory view with today's booking per seat.
func (s *SeatService) AdminList(ctx context.Context) ([]model.AdminSeat, error) {
	if _, err := s.sweeper.SweepExpired(ctx); err != nil {
		return nil, err
	}
	out, err := s.seats.ListAdmin(ctx, clock.Today(s.clock))
	if err != nil {
		return nil, s.fail("list admin seats", err)
	}
	return out, nil
}

// Create adds a seat.  Seat numbers are unique.
func (s *SeatService) Create(ctx context.Context, in model.Seat) (model.Seat, error) {
	in.SeatNumber = strings.TrimSpace(in.SeatNumber)
	in.Location = strings.TrimSpace(in.Location)
	var fields []FieldError
	if in.SeatNumber == "" {
		fields = append(fields, FieldError{Field: "seatNumber", Message: "seatNumber is required"})
	}
	if in.Location == "" {
		fields = append(fields, FieldError{Field: "location", Message: "location is required"})
	}
	if len(fields) > 0 {
		return model.Seat{}, &Error{Kind: KindInvalidInput, Message: "validation failed", Fields: fields}
	}
	in.Description = emptyToNil(in.Description)
	in.IsActive = true

	if err := s.seats.Create(ctx, &in); err != nil {
		if errors.Is(err, repository.ErrDuplicateSeatNumber) {
			return model.Seat{}, conflict("seat number already exists")
		}
		return model.Seat{}, s.fail("create seat", err)
	}
	s.log.Info("seat created", zap.Uint64("id", in.ID), zap.String("seat", in.SeatNumber))
	return in, nil
}

// Update applies a partial change.  Setting IsActive true reactivates a
// soft-deleted seat.
func (s *SeatService) Update(ctx context.Context, id uint64, p model.SeatPatch) (model.Seat, error) {
	if p.SeatNumber != nil {
		v := strings.TrimSpace(*p.SeatNumber)
		if v == "" {
			return model.Seat{}, invalid("seatNumber", "seatNumber cannot be empty")
		}
		p.SeatNumber = &v
	}
	if p.Location != nil {
		v := strings.TrimSpace(*p.Location)
		if v == "" {
			return model.Seat{}, invalid("location", "location cannot be empty")
		}
		p.Location = &v
	}
	seat, err := s.seats.Update(ctx, id, p)
	switch {
	case errors.Is(err, repository.ErrSeatNotFound):
		return model.Seat{}, notFound("seat not found")
	case errors.Is(err, repository.ErrDuplicateSeatNumber):
		return model.Seat{}, conflict("seat number already exists")
	case err != nil:
		return model.Seat{}, s.fail("update seat", err)
	}
	return seat, nil
}

// Delete deactivates a seat.  Seats still holding ACTIVE reservations for
// today or later cannot be removed.
func (s *SeatService) Delete(ctx context.Context, id uint64) error {
	seat, err := s.seats.GetByID(ctx, id)
	if errors.Is(err, repository.ErrSeatNotFound) {
		return notFound("seat not found")
	}
	if err != nil {
		return s.fail("load seat", err)
	}
	upcoming, err := s.reservations.ActiveForSeatFrom(ctx, seat.ID, clock.Today(s.clock))
	if err != nil {
		return s.fail("list seat reservations", err)
	}
	if len(upcoming) > 0 {
		return conflict("seat has active reservations")
	}
	if err := s.seats.Deactivate(ctx, seat.ID); err != nil {
		return s.fail("deactivate seat", err)
	}
	s.log.Info("seat deactivated", zap.Uint64("id", seat.ID), zap.String("seat", seat.SeatNumber))
	return nil
}

func (s *SeatService) activeSeat(ctx context.Context, id uint64) (model.Seat, error) {
	seat, err := s.seats.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrSeatNotFound):
		return seat, notFound("seat not found")
	case err != nil:
		return seat, s.fail("load seat", err)
	case !seat.IsActive:
		return seat, notFound("seat not found")
	}
	return seat, nil
}

func (s *SeatService) fail(op string, err error) error {
	s.log.Error(op, zap.Error(err))
	return internal("internal error", err)
}
