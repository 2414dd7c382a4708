package model

import "time"

// Seat describes a bookable desk.  Seats are identified to people by their
// unique SeatNumber (e.g. "A1") and grouped by a free-form Location label.
// IsActive is a soft-delete flag: a seat referenced by reservations is
// deactivated, never removed, and inactive seats cannot be booked.
type Seat struct {
	ID          uint64    `json:"id"`          // seats.id
	SeatNumber  string    `json:"seatNumber"`  // seats.seat_number (unique)
	Location    string    `json:"location"`    // seats.location
	HasMonitor  bool      `json:"hasMonitor"`  // seats.has_monitor
	Description *string   `json:"description"` // seats.description (nullable)
	IsActive    bool      `json:"isActive"`    // seats.is_active
	CreatedAt   time.Time `json:"createdAt"`   // seats.created_at
	UpdatedAt   time.Time `json:"updatedAt"`   // seats.updated_at
}

// SeatPatch carries a partial seat update.  Nil fields are left unchanged.
type SeatPatch struct {
	SeatNumber  *string
	Location    *string
	HasMonitor  *bool
	Description *string
	IsActive    *bool
}

// SeatFilter narrows the seat availability listing.  Nil fields do not
// filter.
type SeatFilter struct {
	Location   *string
	HasMonitor *bool
	Available  *bool
}

// Occupant is the minimal view of the user holding a seat.
type Occupant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SeatAvailability is one row of the seat map for a date.
type SeatAvailability struct {
	ID           uint64    `json:"id"`
	SeatNumber   string    `json:"seatNumber"`
	Location     string    `json:"location"`
	HasMonitor   bool      `json:"hasMonitor"`
	Description  *string   `json:"description"`
	IsAvailable  bool      `json:"isAvailable"`
	ReservedBy   *Occupant `json:"reservedBy,omitempty"`
	ReservedDate *Date     `json:"reservedDate,omitempty"`
}

// SeatDetail is a seat together with its upcoming ACTIVE reservations.
type SeatDetail struct {
	Seat
	Reservations []ReservationDetail `json:"reservations"`
}

// AdminSeat is the inventory row shown to administrators.
type AdminSeat struct {
	Seat
	CurrentReservation *ReservationDetail `json:"currentReservation"`
	TotalReservations  int                `json:"totalReservations"`
}
