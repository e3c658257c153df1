package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/motogear/resource-api/internal/api/metrics"
	"github.com/motogear/resource-api/internal/api/middleware"
	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

// ResourceHandler serves CRUD for one resource kind. Routes that take :id
// and mutate run behind the Ownership gate, which leaves the loaded record
// on the context.
type ResourceHandler struct {
	service ports.ResourceService
	kind    string
}

func NewResourceHandler(service ports.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: service, kind: service.Kind().Name}
}

// Create handles POST /v1/{kind}.
//
// @Summary      Create a resource
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "tasks, movies or products"
// @Param        body  body      object  true  "Domain fields of the kind"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/{kind} [post]
func (h *ResourceHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	body, err := bindObject(c)
	if err != nil {
		return err
	}

	res, err := h.service.Create(c.Request().Context(), id, body)
	if err != nil {
		return err
	}
	metrics.ResourceMutationsTotal.WithLabelValues(h.kind, string(domain.ActionCreated)).Inc()
	return c.JSON(http.StatusCreated, toResourceResponse(res))
}

// List handles GET /v1/{kind}.
//
// @Summary      List resources, newest first
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        kind      path   string  true   "tasks, movies or products"
// @Param        page      query  int     false  "1-based page"
// @Param        limit     query  int     false  "Page size (default 20, max 100)"
// @Param        owner_id  query  string  false  "Only records of this owner"
// @Success      200  {object}  listResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/{kind} [get]
func (h *ResourceHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid query"})
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	res, err := h.service.List(c.Request().Context(), ports.ListResourcesInput{
		Identity: id,
		OwnerID:  q.OwnerID,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(res))
}

// Get handles GET /v1/{kind}/{id}.
//
// @Summary      Get a resource
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "tasks, movies or products"
// @Param        id    path      string  true  "Resource id"
// @Success      200   {object}  map[string]any
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/{kind}/{id} [get]
func (h *ResourceHandler) Get(c echo.Context) error {
	if res, ok := middleware.ResourceFrom(c); ok {
		return c.JSON(http.StatusOK, toResourceResponse(res))
	}
	if _, err := ctxIdentity(c); err != nil {
		return err
	}
	res, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResourceResponse(res))
}

// Update handles PUT and PATCH /v1/{kind}/{id}. Only the fields present in
// the body change.
//
// @Summary      Update a resource
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "tasks, movies or products"
// @Param        id    path      string  true  "Resource id"
// @Param        body  body      object  true  "Fields to change"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/{kind}/{id} [put]
func (h *ResourceHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	existing, ok := middleware.ResourceFrom(c)
	if !ok {
		return domain.ErrForbidden
	}
	patch, err := bindObject(c)
	if err != nil {
		return err
	}

	res, err := h.service.Update(c.Request().Context(), id, existing, patch)
	if err != nil {
		return err
	}
	metrics.ResourceMutationsTotal.WithLabelValues(h.kind, string(domain.ActionUpdated)).Inc()
	return c.JSON(http.StatusOK, toResourceResponse(res))
}

// Delete handles DELETE /v1/{kind}/{id}.
//
// @Summary      Delete a resource
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "tasks, movies or products"
// @Param        id    path      string  true  "Resource id"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/{kind}/{id} [delete]
func (h *ResourceHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	existing, ok := middleware.ResourceFrom(c)
	if !ok {
		return domain.ErrForbidden
	}

	if err := h.service.Delete(c.Request().Context(), id, existing); err != nil {
		return err
	}
	metrics.ResourceMutationsTotal.WithLabelValues(h.kind, string(domain.ActionDeleted)).Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "resource deleted"})
}
