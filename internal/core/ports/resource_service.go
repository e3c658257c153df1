package ports

import (
	"context"

	"github.com/motogear/resource-api/internal/core/domain"
)

// ListResourcesInput carries the parameters of the list endpoint.
type ListResourcesInput struct {
	Identity domain.Identity
	OwnerID  string // optional explicit owner filter
	Page     int
	Limit    int
}

// ListResourcesResult is returned by List.
type ListResourcesResult struct {
	Items      []*domain.Resource
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ResourceService is the CRUD-over-owned-resource use case for one kind.
type ResourceService interface {
	Kind() domain.ResourceKind
	Create(ctx context.Context, owner domain.Identity, fields map[string]any) (*domain.Resource, error)
	Get(ctx context.Context, id string) (*domain.Resource, error)
	List(ctx context.Context, input ListResourcesInput) (*ListResourcesResult, error)
	// Update merges patch into an already authorized record.
	Update(ctx context.Context, actor domain.Identity, existing *domain.Resource, patch map[string]any) (*domain.Resource, error)
	// Delete removes an already authorized record.
	Delete(ctx context.Context, actor domain.Identity, existing *domain.Resource) error
}
