package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/motogear/resource-api/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{domain.ErrMissingCredential, http.StatusUnauthorized, "missing or malformed authorization header"},
		{fmt.Errorf("%w: token is expired", domain.ErrInvalidCredential), http.StatusUnauthorized, "invalid or expired token"},
		{domain.ErrUnknownSubject, http.StatusUnauthorized, "invalid or expired token"},
		{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{fmt.Errorf("get tasks: %w", domain.ErrResourceNotFound), http.StatusNotFound, "resource not found"},
		{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "too many requests"},
		{echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed"},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: invalid json: %v", tc.err, err)
		}
		if body.Error != tc.msg {
			t.Fatalf("%v: expected %q, got %q", tc.err, tc.msg, body.Error)
		}
	}
}

func TestHTTPErrorHandler_ValidationFields(t *testing.T) {
	verr := &domain.ValidationError{}
	verr.AddMissing("name")
	verr.AddInvalid("price", "must be at least %d", 0)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(fmt.Errorf("create products: %w", verr), c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Fields) != 1 || body.Fields[0] != "name" {
		t.Fatalf("expected missing field list, got %+v", body)
	}
	if len(body.Invalid) != 1 || body.Invalid[0] != "price must be at least 0" {
		t.Fatalf("expected invalid list, got %+v", body)
	}
}

func TestHTTPErrorHandler_UnexpectedErrorIsNotLeaked(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/tasks", nil), rec)

	NewHTTPErrorHandler(zerolog.New(&logs))(errors.New("pq: connection refused at 10.0.0.3"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.3") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Fatalf("expected the cause to be logged, got %q", logs.String())
	}
}
