package router

// Admin dashboard routes.  Seat writes live with the public seat routes in
// seat_routes.go; this group only holds read-side views.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/handler"
	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/model"
)

// RegisterAdmin mounts /api/admin behind JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, s *handler.SeatHandler, jwtSecret string) {
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/seats", s.AdminList)
	g.GET("/stats", a.GetStats)
	g.GET("/users", a.Users)
}
