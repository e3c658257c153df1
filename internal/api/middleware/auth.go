package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/motogear/resource-api/internal/api/metrics"
	"github.com/motogear/resource-api/internal/core/domain"
)

// Authenticator resolves a bearer token to a stored identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

// Auth validates the bearer token and injects the caller's identity into
// the context. Every credential failure is a 401; store failures are
// passed through as internal errors.
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthGateRejectionsTotal.WithLabelValues("missing_credential").Inc()
				return domain.ErrMissingCredential
			}

			id, err := authn.Authenticate(c.Request().Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrInvalidCredential):
					metrics.AuthGateRejectionsTotal.WithLabelValues("invalid_credential").Inc()
				case errors.Is(err, domain.ErrUnknownSubject):
					metrics.AuthGateRejectionsTotal.WithLabelValues("unknown_subject").Inc()
				}
				return err
			}

			c.Set(IdentityKey, id)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
