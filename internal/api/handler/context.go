package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/motogear/resource-api/internal/api/middleware"
	"github.com/motogear/resource-api/internal/core/domain"
)

// ctxIdentity returns the caller attached by the Auth middleware. Its
// absence means the route was wired without the gate; fail closed.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrMissingCredential
	}
	return id, nil
}

// bindObject binds a JSON object body into a generic map. Numbers stay
// float64. Only the body is read; path and query values are not merged in.
func bindObject(c echo.Context) (map[string]any, error) {
	var body map[string]any
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil || body == nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return body, nil
}
