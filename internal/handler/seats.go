package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

// CacheInvalidator retires cached seat listings after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// SeatHandler serves the public seat map and the admin inventory.
type SeatHandler struct {
	Seats *service.SeatService
	Cache CacheInvalidator
}

func NewSeatHandler(s *service.SeatService, cache CacheInvalidator) *SeatHandler {
	return &SeatHandler{Seats: s, Cache: cache}
}

type createSeatReq struct {
	SeatNumber  string  `json:"seatNumber" validate:"required,max=20"`
	Location    string  `json:"location" validate:"required,max=100"`
	HasMonitor  bool    `json:"hasMonitor"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type updateSeatReq struct {
	SeatNumber  *string `json:"seatNumber" validate:"omitempty,max=20"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
	HasMonitor  *bool   `json:"hasMonitor"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"isActive"`
}

// List returns the availability map for ?date= (default today), filtered
// by location, hasMonitor and available.
func (h *SeatHandler) List(c echo.Context) error {
	date, err := queryDate(c, "date")
	if err != nil {
		return respondErr(c, err)
	}
	var f model.SeatFilter
	if loc := c.QueryParam("location"); loc != "" {
		f.Location = &loc
	}
	if f.HasMonitor, err = queryBool(c, "hasMonitor"); err != nil {
		return respondErr(c, err)
	}
	if f.Available, err = queryBool(c, "available"); err != nil {
		return respondErr(c, err)
	}
	var d model.Date
	if date != nil {
		d = *date
	}
	seats, err := h.Seats.Availability(c.Request().Context(), d, f)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, seats, "")
}

// Get returns one seat with its upcoming bookings.
func (h *SeatHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}
	seat, err := h.Seats.Get(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, seat, "")
}

// Create adds a seat (admin).
func (h *SeatHandler) Create(c echo.Context) error {
	var req createSeatReq
	if err := bind(c, &req); err != nil {
		return respondErr(c, err)
	}
	seat, err := h.Seats.Create(c.Request().Context(), model.Seat{
		SeatNumber:  req.SeatNumber,
		Location:    req.Location,
		HasMonitor:  req.HasMonitor,
		Description: req.Description,
	})
	if err != nil {
		return respondErr(c, err)
	}
	h.Cache.Invalidate(c.Request().Context())
	return ok(c, http.StatusCreated, seat, "seat created")
}

// Update changes a seat (admin).  PUT and PATCH both apply a partial
// update.
func (h *SeatHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req updateSeatReq
	if err := bind(c, &req); err != nil {
		return respondErr(c, err)
	}
	seat, err := h.Seats.Update(c.Request().Context(), id, model.SeatPatch{
		SeatNumber:  req.SeatNumber,
		Location:    req.Location,
		HasMonitor:  req.HasMonitor,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return respondErr(c, err)
	}
	h.Cache.Invalidate(c.Request().Context())
	return ok(c, http.StatusOK, seat, "seat updated")
}

// Delete deactivates a seat (admin).
func (h *SeatHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.Seats.Delete(c.Request().Context(), id); err != nil {
		return respondErr(c, err)
	}
	h.Cache.Invalidate(c.Request().Context())
	return ok(c, http.StatusOK, nil, "seat deleted")
}

// AdminList is the inventory with today's occupant per seat.
func (h *SeatHandler) AdminList(c echo.Context) error {
	seats, err := h.Seats.AdminList(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, seats, "")
}
