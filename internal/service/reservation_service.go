package service

import (
	"context"
	"errors"
	"regexp"

	"go.uber.org/zap"

	"github.com/iliyamo/desk-booking/internal/clock"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/queue"
	"github.com/iliyamo/desk-booking/internal/repository"
)

var timeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ReservationService enforces the booking rules.
type ReservationService struct {
	seats        SeatStore
	reservations ReservationStore
	sweeper      *Sweeper
	clock        clock.Clock
	events       EventPublisher
	log          *zap.Logger
}

func NewReservationService(seats SeatStore, reservations ReservationStore, sweeper *Sweeper, clk clock.Clock, events EventPublisher, log *zap.Logger) *ReservationService {
	return &ReservationService{
		seats:        seats,
		reservations: reservations,
		sweeper:      sweeper,
		clock:        clk,
		events:       events,
		log:          log.Named("reservations"),
	}
}

// Create books a seat for p.  Checks run in order: the seat must exist and
// be active, the seat must be free that day, p must not already hold a
// booking that day, and the date must not be in the past.  The unique
// indexes settle races the checks cannot see.
func (s *ReservationService) Create(ctx context.Context, p model.Principal, in model.NewReservation) (model.ReservationDetail, error) {
	in.StartTime, in.EndTime, in.Notes = emptyToNil(in.StartTime), emptyToNil(in.EndTime), emptyToNil(in.Notes)
	if err := validateNew(in); err != nil {
		return model.ReservationDetail{}, err
	}

	seat, err := s.seats.GetByID(ctx, in.SeatID)
	switch {
	case errors.Is(err, repository.ErrSeatNotFound):
		return model.ReservationDetail{}, notFound("seat not found")
	case err != nil:
		return model.ReservationDetail{}, s.fail("load seat", err)
	case !seat.IsActive:
		return model.ReservationDetail{}, notFound("seat not found")
	}

	taken, err := s.reservations.SeatTaken(ctx, seat.ID, in.Date, 0)
	if err != nil {
		return model.ReservationDetail{}, s.fail("check seat", err)
	}
	if taken {
		return model.ReservationDetail{}, conflict("seat is already reserved for this date")
	}

	booked, err := s.reservations.UserBooked(ctx, p.UserID, in.Date, 0)
	if err != nil {
		return model.ReservationDetail{}, s.fail("check user", err)
	}
	if booked {
		return model.ReservationDetail{}, conflict("you already have a reservation for this date")
	}

	if in.Date.Before(clock.Today(s.clock)) {
		return model.ReservationDetail{}, invalid("date", "cannot reserve a seat for a past date")
	}

	res := model.Reservation{
		UserID:    p.UserID,
		SeatID:    seat.ID,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Notes:     in.Notes,
		Status:    model.StatusActive,
	}
	if err := s.reservations.Create(ctx, &res); err != nil {
		return model.ReservationDetail{}, s.storeConflict("create reservation", err)
	}
	s.log.Info("reservation created",
		zap.Uint64("id", res.ID), zap.Uint64("user_id", res.UserID),
		zap.String("seat", seat.SeatNumber), zap.Stringer("date", res.Date))
	publish(ctx, s.events, s.log, queue.NewReservationEvent(queue.EventReservationCreated, res, p.UserID, s.clock.Now()))
	return s.detail(ctx, res.ID)
}

// Update applies patch to a reservation owned by p (or any reservation
// when p is an admin).  A status in the patch may only cancel an ACTIVE
// reservation.
func (s *ReservationService) Update(ctx context.Context, id uint64, patch model.ReservationPatch, p model.Principal) (model.ReservationDetail, error) {
	res, err := s.load(ctx, id, p)
	if err != nil {
		return model.ReservationDetail{}, err
	}
	today := clock.Today(s.clock)

	if patch.Status != nil && *patch.Status != res.Status {
		if *patch.Status != model.StatusCancelled || res.Status != model.StatusActive {
			return model.ReservationDetail{}, invalid("status", "only an active reservation can be cancelled")
		}
		if res.Date.Before(today) {
			return model.ReservationDetail{}, invalid("date", "cannot cancel a past reservation")
		}
	}

	dateChanged := patch.Date != nil && !patch.Date.Equal(res.Date)
	if dateChanged {
		if res.Date.Before(today) {
			return model.ReservationDetail{}, invalid("date", "cannot change the date of a past reservation")
		}
		taken, err := s.reservations.SeatTaken(ctx, res.SeatID, *patch.Date, res.ID)
		if err != nil {
			return model.ReservationDetail{}, s.fail("check seat", err)
		}
		if taken {
			return model.ReservationDetail{}, conflict("seat is already reserved for this date")
		}
		if patch.Date.Before(today) {
			return model.ReservationDetail{}, invalid("date", "cannot move a reservation to a past date")
		}
		booked, err := s.reservations.UserBooked(ctx, res.UserID, *patch.Date, res.ID)
		if err != nil {
			return model.ReservationDetail{}, s.fail("check user", err)
		}
		if booked {
			return model.ReservationDetail{}, conflict("user already has a reservation for this date")
		}
		res.Date = *patch.Date
	}

	if patch.StartTime != nil {
		res.StartTime = emptyToNil(patch.StartTime)
	}
	if patch.EndTime != nil {
		res.EndTime = emptyToNil(patch.EndTime)
	}
	if patch.Notes != nil {
		res.Notes = emptyToNil(patch.Notes)
	}
	if err := validateWindow(res.StartTime, res.EndTime); err != nil {
		return model.ReservationDetail{}, err
	}
	if patch.Status != nil {
		res.Status = *patch.Status
	}

	if err := s.reservations.Update(ctx, &res); err != nil {
		return model.ReservationDetail{}, s.storeConflict("update reservation", err)
	}
	typ := queue.EventReservationUpdated
	if res.Status == model.StatusCancelled {
		typ = queue.EventReservationCancelled
	}
	s.log.Info("reservation updated", zap.Uint64("id", res.ID), zap.String("status", string(res.Status)))
	publish(ctx, s.events, s.log, queue.NewReservationEvent(typ, res, p.UserID, s.clock.Now()))
	return s.detail(ctx, res.ID)
}

// Cancel moves an ACTIVE reservation dated today or later to CANCELLED.
// The row is kept.
func (s *ReservationService) Cancel(ctx context.Context, id uint64, p model.Principal) (model.ReservationDetail, error) {
	res, err := s.load(ctx, id, p)
	if err != nil {
		return model.ReservationDetail{}, err
	}
	if res.Date.Before(clock.Today(s.clock)) {
		return model.ReservationDetail{}, invalid("date", "cannot cancel a past reservation")
	}
	if res.Status != model.StatusActive {
		return model.ReservationDetail{}, conflict("reservation is not active")
	}
	ok, err := s.reservations.Transition(ctx, res.ID, model.StatusActive, model.StatusCancelled)
	if err != nil {
		return model.ReservationDetail{}, s.fail("cancel reservation", err)
	}
	if !ok {
		return model.ReservationDetail{}, conflict("reservation is not active")
	}
	res.Status = model.StatusCancelled
	s.log.Info("reservation cancelled", zap.Uint64("id", res.ID), zap.Uint64("by", p.UserID))
	publish(ctx, s.events, s.log, queue.NewReservationEvent(queue.EventReservationCancelled, res, p.UserID, s.clock.Now()))
	return s.detail(ctx, res.ID)
}

// Get returns one reservation visible to p, after sweeping.
func (s *ReservationService) Get(ctx context.Context, id uint64, p model.Principal) (model.ReservationDetail, error) {
	if _, err := s.sweeper.SweepExpired(ctx); err != nil {
		return model.ReservationDetail{}, err
	}
	if _, err := s.load(ctx, id, p); err != nil {
		return model.ReservationDetail{}, err
	}
	return s.detail(ctx, id)
}

// List sweeps, then returns reservations matching f newest date first.
// Non-admins only ever see their own.
func (s *ReservationService) List(ctx context.Context, p model.Principal, f model.ReservationFilter) ([]model.ReservationDetail, error) {
	if _, err := s.sweeper.SweepExpired(ctx); err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		uid := p.UserID
		f.UserID = &uid
	}
	out, err := s.reservations.List(ctx, f)
	if err != nil {
		return nil, s.fail("list reservations", err)
	}
	return out, nil
}

// load fetches a reservation and applies the ownership gate.
func (s *ReservationService) load(ctx context.Context, id uint64, p model.Principal) (model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return res, notFound("reservation not found")
	}
	if err != nil {
		return res, s.fail("load reservation", err)
	}
	if !p.CanAccess(res.UserID) {
		return res, forbidden("you can only manage your own reservations")
	}
	return res, nil
}

func (s *ReservationService) detail(ctx context.Context, id uint64) (model.ReservationDetail, error) {
	d, err := s.reservations.GetDetail(ctx, id)
	if err != nil {
		return d, s.fail("load reservation detail", err)
	}
	return d, nil
}

func (s *ReservationService) storeConflict(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrSeatTaken):
		return conflict("seat is already reserved for this date")
	case errors.Is(err, repository.ErrUserHasReservation):
		return conflict("user already has a reservation for this date")
	}
	return s.fail(op, err)
}

func (s *ReservationService) fail(op string, err error) error {
	s.log.Error(op, zap.Error(err))
	return internal("internal error", err)
}

func validateNew(in model.NewReservation) error {
	var fields []FieldError
	if in.SeatID == 0 {
		fields = append(fields, FieldError{Field: "seatId", Message: "seatId is required"})
	}
	if in.Date.IsZero() {
		fields = append(fields, FieldError{Field: "date", Message: "date is required"})
	}
	if err := validateWindow(in.StartTime, in.EndTime); err != nil {
		fields = append(fields, err.Fields...)
	}
	if len(fields) > 0 {
		return &Error{Kind: KindInvalidInput, Message: "validation failed", Fields: fields}
	}
	return nil
}

func validateWindow(start, end *string) *Error {
	var fields []FieldError
	if start != nil && !timeOfDay.MatchString(*start) {
		fields = append(fields, FieldError{Field: "startTime", Message: "startTime must be HH:MM"})
	}
	if end != nil && !timeOfDay.MatchString(*end) {
		fields = append(fields, FieldError{Field: "endTime", Message: "endTime must be HH:MM"})
	}
	if len(fields) == 0 && start != nil && end != nil && *end <= *start {
		fields = append(fields, FieldError{Field: "endTime", Message: "endTime must be after startTime"})
	}
	if len(fields) > 0 {
		return &Error{Kind: KindInvalidInput, Message: "validation failed", Fields: fields}
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
