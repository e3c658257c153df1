package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/motogear/resource-api/internal/core/domain"
)

// Context keys set by the gates.
const (
	IdentityKey = "identity"
	ResourceKey = "resource"
)

// IdentityFrom returns the identity attached by Auth.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	return id, ok && id.ID != ""
}

// ResourceFrom returns the record loaded by Ownership.
func ResourceFrom(c echo.Context) (*domain.Resource, bool) {
	r, ok := c.Get(ResourceKey).(*domain.Resource)
	return r, ok && r != nil
}
