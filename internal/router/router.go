// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/handler"
	"github.com/iliyamo/desk-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the session endpoints under /api/auth and the
// authenticated profile at /api/me.  Logout accepts an optional bearer
// token: with one, every session of the caller is revoked.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))

	e.GET("/api/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterCron mounts the externally scheduled expiry sweep.  Both GET and
// POST are accepted since schedulers differ in what they send.
func RegisterCron(e *echo.Echo, s handler.Sweeper, cronSecret string) {
	h := handler.UpdateReservations(s)
	g := e.Group("/api/cron", middleware.CronSecret(cronSecret))
	g.GET("/update-reservations", h)
	g.POST("/update-reservations", h)
}
