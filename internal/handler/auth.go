package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

// AuthHandler exposes registration, login and token rotation.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler { return &AuthHandler{Auth: a} }

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    model.User `json:"user"`
	Access  tokenPart  `json:"access"`
	Refresh tokenPart  `json:"refresh"`
}

func sessionResp(s service.Session) authResp {
	return authResp{
		User:    s.User,
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp},
	}
}

func timeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// Register creates a USER account and returns a token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := timeout(c)
	defer cancel()

	s, err := h.Auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusCreated, sessionResp(s), "account created")
}

// Login verifies credentials and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := timeout(c)
	defer cancel()

	s, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, sessionResp(s), "")
}

// Refresh rotates the presented refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := timeout(c)
	defer cancel()

	s, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, sessionResp(s), "")
}

// Logout revokes the refresh token in the body, or every session of the
// bearer when the body carries none.  The route runs OptionalJWT.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)

	var p *model.Principal
	if pr, found := middleware.PrincipalFrom(c); found {
		p = &pr
	}
	ctx, cancel := timeout(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, p, req.RefreshToken); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's account.
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondErr(c, err)
	}
	u, err := h.Auth.Me(c.Request().Context(), p)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, http.StatusOK, u, "")
}
