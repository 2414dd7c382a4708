// Package queue publishes reservation lifecycle events to RabbitMQ and runs
// the audit consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/desk-booking/internal/model"
)

// EventType doubles as the routing key on the reservation exchange.
type EventType string

const (
	EventReservationCreated   EventType = "reservation.created"
	EventReservationUpdated   EventType = "reservation.updated"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventReservationsExpired  EventType = "reservation.expired"
)

// ReservationEvent is the message body published for every state change.
// Expiry sweeps publish one summary event carrying Count instead of one
// message per row.
type ReservationEvent struct {
	MessageID     string    `json:"message_id"`
	Type          EventType `json:"type"`
	ReservationID uint64    `json:"reservation_id,omitempty"`
	UserID        uint64    `json:"user_id,omitempty"`
	SeatID        uint64    `json:"seat_id,omitempty"`
	Date          string    `json:"date,omitempty"`
	Status        string    `json:"status,omitempty"`
	ActorID       uint64    `json:"actor_id,omitempty"`
	Count         int64     `json:"count,omitempty"`
	OccurredAt    string    `json:"occurred_at"`
}

// NewReservationEvent describes a change to res performed by actorID.
func NewReservationEvent(typ EventType, res model.Reservation, actorID uint64, at time.Time) ReservationEvent {
	return ReservationEvent{
		MessageID:     uuid.NewString(),
		Type:          typ,
		ReservationID: res.ID,
		UserID:        res.UserID,
		SeatID:        res.SeatID,
		Date:          res.Date.String(),
		Status:        string(res.Status),
		ActorID:       actorID,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}

// NewExpiredEvent summarises one sweep run that completed n reservations.
func NewExpiredEvent(n int64, at time.Time) ReservationEvent {
	return ReservationEvent{
		MessageID:  uuid.NewString(),
		Type:       EventReservationsExpired,
		Status:     string(model.StatusCompleted),
		Count:      n,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}
