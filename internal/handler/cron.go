package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Sweeper runs the reservation expiry sweep.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// UpdateReservations is the scheduled trigger for the expiry sweep.  The
// route is guarded by middleware.CronSecret.
func UpdateReservations(s Sweeper) echo.HandlerFunc {
	return func(c echo.Context) error {
		n, err := s.SweepExpired(c.Request().Context())
		if err != nil {
			return respondErr(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "updatedCount": n})
	}
}
