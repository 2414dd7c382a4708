package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.  ACTIVE may
// move to CANCELLED (explicit action) or COMPLETED (expiry sweep); the
// other two are terminal.
type ReservationStatus string

const (
	StatusActive    ReservationStatus = "ACTIVE"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusCompleted ReservationStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Reservation records a user's booking of one seat for one calendar date.
// StartTime and EndTime are optional "HH:MM" strings; a reservation with
// neither is an all-day booking.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – user who made the reservation.
//	SeatID    – seat being reserved.
//	Date      – calendar day of the booking.
//	StartTime – optional start time.
//	EndTime   – optional end time.
//	Notes     – optional free text.
//	Status    – ACTIVE, CANCELLED or COMPLETED.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64            `json:"id"`
	UserID    uint64            `json:"userId"`
	SeatID    uint64            `json:"seatId"`
	Date      Date              `json:"date"`
	StartTime *string           `json:"startTime"`
	EndTime   *string           `json:"endTime"`
	Notes     *string           `json:"notes"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// AllDay reports whether the reservation has no time window.
func (r Reservation) AllDay() bool { return r.StartTime == nil && r.EndTime == nil }

// SeatRef is the seat summary embedded in reservation listings.
type SeatRef struct {
	ID         uint64 `json:"id"`
	SeatNumber string `json:"seatNumber"`
	Location   string `json:"location"`
	HasMonitor bool   `json:"hasMonitor"`
}

// UserRef is the user summary embedded in reservation listings.
type UserRef struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReservationDetail is a reservation joined with its seat and user.
type ReservationDetail struct {
	Reservation
	Seat SeatRef `json:"seat"`
	User UserRef `json:"user"`
}

// NewReservation carries the caller-supplied fields of a booking.
type NewReservation struct {
	SeatID    uint64
	Date      Date
	StartTime *string
	EndTime   *string
	Notes     *string
}

// ReservationPatch is a partial update.  Nil fields are left unchanged.
type ReservationPatch struct {
	Date      *Date
	StartTime *string
	EndTime   *string
	Notes     *string
	Status    *ReservationStatus
}

// ReservationFilter narrows reservation listings.  Date takes precedence
// over the From/To range.
type ReservationFilter struct {
	UserID *uint64
	SeatID *uint64
	Status *ReservationStatus
	Date   *Date
	From   *Date
	To     *Date
}
