package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/handler"
	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/model"
)

// RegisterSeats registers the seat map under /api/seats.  Reads need a
// signed-in user since they name who sits where; they go through the
// response cache after authentication.  Writes require the ADMIN role.
func RegisterSeats(e *echo.Echo, h *handler.SeatHandler, cache *middleware.ResponseCache, jwtSecret string) {
	g := e.Group("/api/seats", middleware.JWTAuth(jwtSecret))
	g.GET("", h.List, cache.Middleware())
	g.GET("/:id", h.Get, cache.Middleware())

	admin := middleware.RequireRole(model.RoleAdmin)
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, admin)
	g.PATCH("/:id", h.Update, admin)
	g.DELETE("/:id", h.Delete, admin)
}
