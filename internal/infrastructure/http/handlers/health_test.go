package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("Liveness: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name   string
		deps   []Dependency
		status int
		body   string
	}{
		{"no dependencies", nil, http.StatusOK, "ok"},
		{"all up", []Dependency{{"mongodb", ok}, {"redis", ok}}, http.StatusOK, "ok"},
		{"redis down", []Dependency{{"mongodb", ok}, {"redis", down}}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

		if err := NewHealthDependenciesHandler(tc.deps...).Readiness(c); err != nil {
			t.Fatalf("%s: Readiness: %v", tc.name, err)
		}
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
		var resp readinessResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if resp.Status != tc.body {
			t.Fatalf("%s: expected status %q, got %q", tc.name, tc.body, resp.Status)
		}
		if len(resp.Dependencies) != len(tc.deps) {
			t.Fatalf("%s: expected %d dependencies, got %v", tc.name, len(tc.deps), resp.Dependencies)
		}
	}
}
