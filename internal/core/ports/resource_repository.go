package ports

import (
	"context"

	"github.com/motogear/resource-api/internal/core/domain"
)

// ListResourcesFilter carries the query for listing one kind.
type ListResourcesFilter struct {
	Kind    string
	OwnerID string // empty = every owner
	Page    int    // 1-based
	Limit   int
}

// ResourceRepository persists owned resources of every kind. Records are
// addressed by (kind, id); lookups, updates and deletes of a missing record
// return domain.ErrResourceNotFound.
type ResourceRepository interface {
	Insert(ctx context.Context, r *domain.Resource) error
	FindByID(ctx context.Context, kind, id string) (*domain.Resource, error)
	// List returns a page ordered by created_at descending and the total count.
	List(ctx context.Context, filter ListResourcesFilter) ([]*domain.Resource, int64, error)
	// Update replaces the record's Fields and UpdatedAt.
	Update(ctx context.Context, r *domain.Resource) error
	Delete(ctx context.Context, kind, id string) error
}
