package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/handler"
	"github.com/iliyamo/desk-booking/internal/middleware"
)

// RegisterReservations registers the booking endpoints under
// /api/reservations.  Every route requires a valid JWT; ownership is
// checked by the service, so admins reach any reservation and users only
// their own.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/api/reservations", middleware.JWTAuth(jwtSecret))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Cancel)
}
