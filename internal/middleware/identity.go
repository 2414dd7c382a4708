package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/model"
)

const principalKey = "principal"

// SetPrincipal stores the authenticated caller on the request context.
func SetPrincipal(c echo.Context, p model.Principal) { c.Set(principalKey, p) }

// PrincipalFrom returns the caller stored by JWTAuth or OptionalJWT.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok
}

// userID identifies the caller for rate-limit buckets: the user id when
// authenticated, "guest" otherwise.
func userID(c echo.Context) string {
	if p, ok := PrincipalFrom(c); ok {
		return strconv.FormatUint(p.UserID, 10)
	}
	return "guest"
}

// errorJSON writes the failure envelope used across the API.
func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]any{"error": msg, "success": false})
}
