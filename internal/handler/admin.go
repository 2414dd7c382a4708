package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

// AdminHandler serves the dashboard endpoints.
type AdminHandler struct {
	Stats *service.StatsService
	Auth  *service.AuthService
}

func NewAdminHandler(stats *service.StatsService, auth *service.AuthService) *AdminHandler {
	return &AdminHandler{Stats: stats, Auth: auth}
}

// GetStats returns totals, occupancy, weekly trend and popular seats.
func (h *AdminHandler) GetStats(c echo.Context) error {
	st, err := h.Stats.Stats(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, st, "")
}

// Users lists accounts with their active reservation counts.
func (h *AdminHandler) Users(c echo.Context) error {
	role := model.Role(strings.ToUpper(c.QueryParam("role")))
	users, err := h.Auth.ListUsers(c.Request().Context(), role, c.QueryParam("search"))
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, users, "")
}
