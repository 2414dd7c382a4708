package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

type envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

type errorEnvelope struct {
	Error   string               `json:"error"`
	Details []service.FieldError `json:"details,omitempty"`
	Success bool                 `json:"success"`
}

func ok(c echo.Context, status int, data any, msg string) error {
	return c.JSON(status, envelope{Data: data, Message: msg, Success: true})
}

func fail(c echo.Context, status int, msg string, details ...service.FieldError) error {
	return c.JSON(status, errorEnvelope{Error: msg, Details: details, Success: false})
}

var kindStatus = map[service.Kind]int{
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
	service.KindInvalidInput: http.StatusBadRequest,
	service.KindInternal:     http.StatusInternalServerError,
}

// respondErr writes err as the error envelope.  Internal causes were
// logged by the service and are never echoed.
func respondErr(c echo.Context, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		c.Logger().Error(err)
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	status, found := kindStatus[se.Kind]
	if !found || se.Kind == service.KindInternal {
		return fail(c, http.StatusInternalServerError, "internal error")
	}
	return fail(c, status, se.Message, se.Fields...)
}

// bind decodes and validates the request body into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return &service.Error{Kind: service.KindInvalidInput, Message: "invalid request body", Err: err}
	}
	if err := c.Validate(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &service.Error{Kind: service.KindInvalidInput, Message: "validation failed", Fields: fieldErrors(verrs)}
		}
		return &service.Error{Kind: service.KindInvalidInput, Message: err.Error(), Err: err}
	}
	return nil
}

func principal(c echo.Context) (model.Principal, error) {
	p, found := middleware.PrincipalFrom(c)
	if !found {
		return p, &service.Error{Kind: service.KindUnauthorized, Message: "authentication required"}
	}
	return p, nil
}

func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, &service.Error{Kind: service.KindInvalidInput, Message: "invalid id",
			Fields: []service.FieldError{{Field: "id", Message: "id must be a positive integer"}}}
	}
	return id, nil
}

func queryUint(c echo.Context, name string) (*uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, badQuery(name, name+" must be a positive integer")
	}
	return &v, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, badQuery(name, name+" must be true or false")
	}
	return &v, nil
}

func queryDate(c echo.Context, name string) (*model.Date, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, badQuery(name, name+" must be YYYY-MM-DD")
	}
	return &d, nil
}

func badQuery(field, msg string) error {
	return &service.Error{Kind: service.KindInvalidInput, Message: msg,
		Fields: []service.FieldError{{Field: field, Message: msg}}}
}
