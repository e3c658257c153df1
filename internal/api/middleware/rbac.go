package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/motogear/resource-api/internal/api/metrics"
	"github.com/motogear/resource-api/internal/core/domain"
)

// RBAC admits only callers whose role is in roles. It runs after Auth; a
// request without an identity is unauthenticated, not forbidden.
func RBAC(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrMissingCredential
			}
			if !allowed[id.Role] {
				metrics.AuthGateRejectionsTotal.WithLabelValues("role").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
