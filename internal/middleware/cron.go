package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CronHeader carries the shared secret of the scheduled trigger.
const CronHeader = "X-Cron-Secret"

// CronSecret admits requests presenting secret in the X-Cron-Secret header
// or as a Bearer token.  An empty secret rejects everything.
func CronSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return errorJSON(c, http.StatusUnauthorized, "unauthorized")
			}
			got := c.Request().Header.Get(CronHeader)
			if got == "" {
				got, _ = bearer(c)
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				return errorJSON(c, http.StatusUnauthorized, "unauthorized")
			}
			return next(c)
		}
	}
}
