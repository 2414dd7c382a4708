package service

import (
	"context"
	"time"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/queue"
)

// The interfaces below are satisfied by the repository types.  They are
// declared here so the rules can be tested against in-memory stores.

type SeatStore interface {
	Create(ctx context.Context, s *model.Seat) error
	GetByID(ctx context.Context, id uint64) (model.Seat, error)
	Update(ctx context.Context, id uint64, p model.SeatPatch) (model.Seat, error)
	Deactivate(ctx context.Context, id uint64) error
	CountActive(ctx context.Context) (int, error)
	ListAvailability(ctx context.Context, date model.Date, f model.SeatFilter) ([]model.SeatAvailability, error)
	ListAdmin(ctx context.Context, today model.Date) ([]model.AdminSeat, error)
}

type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	GetDetail(ctx context.Context, id uint64) (model.ReservationDetail, error)
	SeatTaken(ctx context.Context, seatID uint64, date model.Date, excludeID uint64) (bool, error)
	UserBooked(ctx context.Context, userID uint64, date model.Date, excludeID uint64) (bool, error)
	Update(ctx context.Context, res *model.Reservation) error
	Transition(ctx context.Context, id uint64, from, to model.ReservationStatus) (bool, error)
	List(ctx context.Context, f model.ReservationFilter) ([]model.ReservationDetail, error)
	ActiveForSeatFrom(ctx context.Context, seatID uint64, from model.Date) ([]model.ReservationDetail, error)
	CompleteExpired(ctx context.Context, today model.Date) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, name, email, password string, role model.Role, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	Count(ctx context.Context) (int, error)
	ListSummaries(ctx context.Context, role model.Role, search string) ([]model.UserSummary, error)
}

type TokenStore interface {
	Save(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Consume(ctx context.Context, tokenHash string) (uint64, error)
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type StatsStore interface {
	CountReservations(ctx context.Context) (int, error)
	CountActiveOn(ctx context.Context, day model.Date) (int, error)
	DailyActive(ctx context.Context, from, to model.Date) ([]model.DailyCount, error)
	TopSeats(ctx context.Context, from, to model.Date, limit int) ([]model.SeatPopularity, error)
}

// EventPublisher receives reservation lifecycle events.  queue.Publisher
// is the production implementation.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}
