package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/motogear/resource-api/internal/core/domain"
)

type stubAuthenticator struct {
	identity domain.Identity
	err      error
	token    string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (domain.Identity, error) {
	s.token = token
	return s.identity, s.err
}

func runAuth(t *testing.T, authn Authenticator, header string) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := Auth(authn)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return c, called, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	stub := &stubAuthenticator{identity: domain.Identity{ID: "u1", Handle: "alice", Role: domain.RoleUser}}

	c, called, err := runAuth(t, stub, "bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if stub.token != "abc.def.ghi" {
		t.Fatalf("unexpected token passed: %q", stub.token)
	}
	id, ok := IdentityFrom(c)
	if !ok || id.Handle != "alice" {
		t.Fatalf("identity not set: %+v", id)
	}
}

func TestAuthMiddleware_MissingOrMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "Token abc", "Bearer", "Bearer   ", "abc"} {
		stub := &stubAuthenticator{}
		_, called, err := runAuth(t, stub, header)
		if called {
			t.Fatalf("%q: should not reach next", header)
		}
		if !errors.Is(err, domain.ErrMissingCredential) {
			t.Fatalf("%q: expected ErrMissingCredential, got %v", header, err)
		}
		if stub.token != "" {
			t.Fatalf("%q: authenticator must not be called", header)
		}
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	cases := []error{
		domain.ErrInvalidCredential,
		domain.ErrUnknownSubject,
		errors.New("store down"),
	}
	for _, want := range cases {
		c, called, err := runAuth(t, &stubAuthenticator{err: want}, "Bearer tok")
		if called {
			t.Fatalf("%v: should not reach next", want)
		}
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if _, ok := IdentityFrom(c); ok {
			t.Fatalf("%v: identity must not be set", want)
		}
	}
}
