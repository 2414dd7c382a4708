package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/model"
	"github.com/iliyamo/desk-booking/internal/service"
)

type errorBody struct {
	Error   string               `json:"error"`
	Details []service.FieldError `json:"details"`
	Success bool                 `json:"success"`
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func asUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		middleware.SetPrincipal(c, model.Principal{UserID: 7, Role: model.RoleUser})
		return next(c)
	}
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

func fields(details []service.FieldError) []string {
	out := make([]string, 0, len(details))
	for _, d := range details {
		out = append(out, d.Field)
	}
	return out
}

func TestReservationCreate_RejectsBadRequests(t *testing.T) {
	h := NewReservationHandler(nil, nil)
	e := newEcho()
	e.POST("/reservations", h.Create, asUser)
	e.POST("/anon", h.Create)

	t.Run("unauthenticated", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/anon", `{"seatId":1,"date":"2026-10-20"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/reservations", `{"seatId":"one"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid request body", decodeError(t, rec).Error)
	})

	t.Run("field validation", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/reservations", `{"date":"2026-13-01","startTime":"9am","endTime":"17:00"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "validation failed", body.Error)
		assert.ElementsMatch(t, []string{"seatId", "date", "startTime"}, fields(body.Details))
	})

	t.Run("notes too long", func(t *testing.T) {
		long := strings.Repeat("x", 501)
		rec := do(e, http.MethodPost, "/reservations", `{"seatId":1,"date":"2026-10-20","notes":"`+long+`"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []string{"notes"}, fields(decodeError(t, rec).Details))
	})
}

func TestReservationUpdate_RejectsUnknownStatus(t *testing.T) {
	h := NewReservationHandler(nil, nil)
	e := newEcho()
	e.PATCH("/reservations/:id", h.Update, asUser)

	rec := do(e, http.MethodPatch, "/reservations/3", `{"status":"PENDING"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "status", body.Details[0].Field)
	assert.Equal(t, "status must be one of ACTIVE CANCELLED COMPLETED", body.Details[0].Message)

	rec = do(e, http.MethodPatch, "/reservations/abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"id"}, fields(decodeError(t, rec).Details))
}

func TestReservationList_QueryValidation(t *testing.T) {
	h := NewReservationHandler(nil, nil)
	e := newEcho()
	e.GET("/reservations", h.List, asUser)

	tests := []struct {
		query string
		field string
	}{
		{"status=DONE", "status"},
		{"date=tomorrow", "date"},
		{"startDate=2026-02-30", "startDate"},
		{"seatId=-1", "seatId"},
		{"userId=x", "userId"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(e, http.MethodGet, "/reservations?"+tt.query, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, []string{tt.field}, fields(decodeError(t, rec).Details))
		})
	}
}

func TestSeatCreate_Validation(t *testing.T) {
	h := NewSeatHandler(nil, nil)
	e := newEcho()
	e.POST("/seats", h.Create)

	rec := do(e, http.MethodPost, "/seats", `{"location":"Floor 1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, fields(decodeError(t, rec).Details), "seatNumber")
}

func TestRespondErr_MapsKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{&service.Error{Kind: service.KindNotFound, Message: "seat not found"}, http.StatusNotFound, "seat not found"},
		{&service.Error{Kind: service.KindConflict, Message: "taken"}, http.StatusConflict, "taken"},
		{&service.Error{Kind: service.KindForbidden, Message: "nope"}, http.StatusForbidden, "nope"},
		{&service.Error{Kind: service.KindUnauthorized, Message: "who"}, http.StatusUnauthorized, "who"},
		{&service.Error{Kind: service.KindInvalidInput, Message: "bad"}, http.StatusBadRequest, "bad"},
		{&service.Error{Kind: service.KindInternal, Message: "db password leaked", Err: errors.New("boom")}, http.StatusInternalServerError, "internal error"},
		{errors.New("plain"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, respondErr(c, tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decodeError(t, rec).Error)
		})
	}
}

type stubSweeper struct {
	n   int64
	err error
}

func (s stubSweeper) SweepExpired(context.Context) (int64, error) { return s.n, s.err }

func TestUpdateReservations(t *testing.T) {
	e := echo.New()
	e.POST("/ok", UpdateReservations(stubSweeper{n: 3}))
	e.POST("/fail", UpdateReservations(stubSweeper{err: &service.Error{Kind: service.KindInternal, Message: "sweep"}}))

	rec := do(e, http.MethodPost, "/ok", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"updatedCount":3}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/fail", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/up", Health(pinger{}))
	e.GET("/down", Health(pinger{err: errors.New("refused")}))

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/up", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/down", "").Code)
}
