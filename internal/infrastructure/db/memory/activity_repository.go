package memory

import (
	"context"
	"sync"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

const DefaultActivityCapacity = 1000

// ActivityRepository is a bounded ring of the most recent events.
type ActivityRepository struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
	next   int
	full   bool
}

func NewActivityRepository(capacity int) *ActivityRepository {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivityRepository{events: make([]domain.ActivityEvent, capacity)}
}

func (r *ActivityRepository) Insert(_ context.Context, e *domain.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.next] = *e
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// List walks the ring backwards from the newest event.
func (r *ActivityRepository) List(_ context.Context, f ports.ActivityFilter) ([]*domain.ActivityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.full {
		size = len(r.events)
	}

	out := make([]*domain.ActivityEvent, 0)
	for i := 0; i < size; i++ {
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		idx := (r.next - 1 - i + len(r.events)) % len(r.events)
		e := r.events[idx]
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		if f.ResourceID != "" && e.ResourceID != f.ResourceID {
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}
