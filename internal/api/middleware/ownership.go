package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/motogear/resource-api/internal/api/metrics"
	"github.com/motogear/resource-api/internal/core/domain"
)

// ResourceLoader fetches one record of a kind.
type ResourceLoader interface {
	Kind() domain.ResourceKind
	Get(ctx context.Context, id string) (*domain.Resource, error)
}

// Ownership must run after Auth on routes with an :id parameter. A missing
// record is reported before any ownership decision, so non-owners see 404
// for absent ids and 403 for existing ones.
func Ownership(loader ResourceLoader) echo.MiddlewareFunc {
	kind := loader.Kind().Name
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrMissingCredential
			}

			res, err := loader.Get(c.Request().Context(), c.Param("id"))
			if err != nil {
				return err
			}
			if !res.CanModify(id) {
				metrics.OwnershipDenialsTotal.WithLabelValues(kind).Inc()
				return domain.ErrForbidden
			}

			c.Set(ResourceKey, res)
			return next(c)
		}
	}
}
