package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/model"
)

// RequireRole admits only principals holding one of roles.  It must run
// after JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return errorJSON(c, http.StatusUnauthorized, "authentication required")
			}
			if !allowed[p.Role] {
				return errorJSON(c, http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
