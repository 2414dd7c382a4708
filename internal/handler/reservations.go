package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

// ReservationHandler exposes the booking rules over HTTP.
type ReservationHandler struct {
	Reservations *service.ReservationService
	Cache        CacheInvalidator
}

func NewReservationHandler(r *service.ReservationService, cache CacheInvalidator) *ReservationHandler {
	return &ReservationHandler{Reservations: r, Cache: cache}
}

type createReservationReq struct {
	SeatID    uint64  `json:"seatId" validate:"required"`
	Date      string  `json:"date" validate:"required,isodate"`
	StartTime *string `json:"startTime" validate:"omitempty,hhmm"`
	EndTime   *string `json:"endTime" validate:"omitempty,hhmm"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

type updateReservationReq struct {
	Date      *string `json:"date" validate:"omitempty,isodate"`
	StartTime *string `json:"startTime" validate:"omitempty,hhmm"`
	EndTime   *string `json:"endTime" validate:"omitempty,hhmm"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
	Status    *string `json:"status" validate:"omitempty,oneof=ACTIVE CANCELLED COMPLETED"`
}

// List returns the caller's reservations (all of them for admins),
// filtered by status, date, startDate/endDate, seatId and, for admins,
// userId.
func (h *ReservationHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondErr(c, err)
	}
	var f model.ReservationFilter
	if s := c.QueryParam("status"); s != "" {
		st := model.ReservationStatus(s)
		if !st.Valid() {
			return respondErr(c, badQuery("status", "status must be ACTIVE, CANCELLED or COMPLETED"))
		}
		f.Status = &st
	}
	if f.Date, err = queryDate(c, "date"); err != nil {
		return respondErr(c, err)
	}
	if f.From, err = queryDate(c, "startDate"); err != nil {
		return respondErr(c, err)
	}
	if f.To, err = queryDate(c, "endDate"); err != nil {
		return respondErr(c, err)
	}
	if f.SeatID, err = queryUint(c, "seatId"); err != nil {
		return respondErr(c, err)
	}
	if f.UserID, err = queryUint(c, "userId"); err != nil {
		return respondErr(c, err)
	}

	out, err := h.Reservations.List(c.Request().Context(), p, f)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, out, "")
}

// Create books a seat for the caller.
func (h *ReservationHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req createReservationReq
	if err := bind(c, &req); err != nil {
		return respondErr(c, err)
	}
	date, _ := model.ParseDate(req.Date)

	res, err := h.Reservations.Create(c.Request().Context(), p, model.NewReservation{
		SeatID:    req.SeatID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	})
	if err != nil {
		return respondErr(c, err)
	}
	h.Cache.Invalidate(c.Request().Context())
	return ok(c, http.StatusCreated, res, "reservation created")
}

// Get returns one reservation.
func (h *ReservationHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondErr(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}
	res, err := h.Reservations.Get(c.Request().Context(), id, p)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, res, "")
}

// Update applies a partial change.  An empty string clears an optional
// field.
func (h *ReservationHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondErr(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}
	var req updateReservationReq
	if err := bind(c, &req); err != nil {
		return respondErr(c, err)
	}
	patch := model.ReservationPatch{StartTime: req.StartTime, EndTime: req.EndTime, Notes: req.Notes}
	if req.Date != nil {
		d, _ := model.ParseDate(*req.Date)
		patch.Date = &d
	}
	if req.Status != nil {
		st := model.ReservationStatus(*req.Status)
		patch.Status = &st
	}

	res, err := h.Reservations.Update(c.Request().Context(), id, patch, p)
	if err != nil {
		return respondErr(c, err)
	}
	h.Cache.Invalidate(c.Request().Context())
	return ok(c, http.StatusOK, res, "reservation updated")
}

// Cancel marks the reservation CANCELLED; the row is kept.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondErr(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return respondErr(c, err)
	}
	res, err := h.Reservations.Cancel(c.Request().Context(), id, p)
	if err != nil {
		return respondErr(c, err)
	}
	h.Cache.Invalidate(c.Request().Context())
	return ok(c, http.StatusOK, res, "reservation cancelled")
}
