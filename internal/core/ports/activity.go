package ports

import (
	"context"

	"github.com/motogear/resource-api/internal/core/domain"
)

// ActivityFilter narrows an activity listing.
type ActivityFilter struct {
	Kind       string
	ResourceID string
	Limit      int
}

// ActivityRepository persists the audit trail of resource mutations.
type ActivityRepository interface {
	Insert(ctx context.Context, event *domain.ActivityEvent) error
	// List returns events newest first.
	List(ctx context.Context, filter ActivityFilter) ([]*domain.ActivityEvent, error)
}

// ActivityService records and lists resource activity.
type ActivityService interface {
	Record(ctx context.Context, event domain.ActivityEvent) error
	List(ctx context.Context, filter ActivityFilter) ([]*domain.ActivityEvent, error)
}

// ActivityPublisher hands events to the asynchronous recorder.
type ActivityPublisher interface {
	Enqueue(event domain.ActivityEvent)
}
