package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/utils"
)

func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// JWTAuth rejects requests without a valid Bearer access token and stores
// the token's principal for downstream handlers.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return errorJSON(c, http.StatusUnauthorized, "missing bearer token")
			}
			p, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return errorJSON(c, http.StatusUnauthorized, "invalid token")
			}
			SetPrincipal(c, p)
			return next(c)
		}
	}
}

// OptionalJWT stores the principal when a valid Bearer token is present and
// lets every request through.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearer(c); ok {
				if p, err := utils.ParseAccessToken(secret, raw); err == nil {
					SetPrincipal(c, p)
				}
			}
			return next(c)
		}
	}
}
