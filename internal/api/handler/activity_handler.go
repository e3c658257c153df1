package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/motogear/resource-api/internal/core/ports"
)

// ActivityHandler exposes the resource audit trail to admins.
type ActivityHandler struct {
	service ports.ActivityService
}

func NewActivityHandler(service ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// List handles GET /v1/activity.
//
// @Summary      List recent resource activity
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Param        kind         query     string  false  "Resource kind"
// @Param        resource_id  query     string  false  "Resource id"
// @Param        limit        query     int     false  "Max events (default 50, max 200)"
// @Success      200          {array}   activityResponse
// @Failure      400          {object}  errorResponse
// @Failure      403          {object}  errorResponse
// @Router       /v1/activity [get]
func (h *ActivityHandler) List(c echo.Context) error {
	var q activityQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid query"})
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	events, err := h.service.List(c.Request().Context(), ports.ActivityFilter{
		Kind:       q.Kind,
		ResourceID: q.ResourceID,
		Limit:      q.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toActivityResponse(events))
}
