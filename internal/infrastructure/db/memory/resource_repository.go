package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

// ResourceRepository keeps every kind in process memory. The lock protects
// the maps only; callers doing read-modify-write sequences race and the
// last write wins.
type ResourceRepository struct {
	mu    sync.RWMutex
	kinds map[string]map[string]*domain.Resource
}

func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{kinds: make(map[string]map[string]*domain.Resource)}
}

func (r *ResourceRepository) Insert(_ context.Context, res *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.kinds[res.Kind]
	if !ok {
		bucket = make(map[string]*domain.Resource)
		r.kinds[res.Kind] = bucket
	}
	bucket[res.ID] = res.Clone()
	return nil
}

func (r *ResourceRepository) FindByID(_ context.Context, kind, id string) (*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.kinds[kind][id]
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	return res.Clone(), nil
}

func (r *ResourceRepository) List(_ context.Context, f ports.ListResourcesFilter) ([]*domain.Resource, int64, error) {
	r.mu.RLock()
	matched := make([]*domain.Resource, 0, len(r.kinds[f.Kind]))
	for _, res := range r.kinds[f.Kind] {
		if f.OwnerID != "" && res.OwnerID != f.OwnerID {
			continue
		}
		matched = append(matched, res.Clone())
	}
	r.mu.RUnlock()

	return Page(matched, f.Page, f.Limit), int64(len(matched)), nil
}

func (r *ResourceRepository) Update(_ context.Context, res *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.kinds[res.Kind][res.ID]
	if !ok {
		return domain.ErrResourceNotFound
	}
	next := res.Clone()
	next.OwnerID = stored.OwnerID
	next.CreatedAt = stored.CreatedAt
	r.kinds[res.Kind][res.ID] = next
	return nil
}

func (r *ResourceRepository) Delete(_ context.Context, kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.kinds[kind][id]; !ok {
		return domain.ErrResourceNotFound
	}
	delete(r.kinds[kind], id)
	return nil
}

// Snapshot returns a copy of every record of kind.
func (r *ResourceRepository) Snapshot(kind string) []*domain.Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Resource, 0, len(r.kinds[kind]))
	for _, res := range r.kinds[kind] {
		out = append(out, res.Clone())
	}
	return out
}

// Load replaces every record of kind.
func (r *ResourceRepository) Load(kind string, items []*domain.Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := make(map[string]*domain.Resource, len(items))
	for _, res := range items {
		c := res.Clone()
		c.Kind = kind
		bucket[c.ID] = c
	}
	r.kinds[kind] = bucket
}

// Page sorts items newest first (id breaks ties) and returns the requested
// 1-based page.
func Page(items []*domain.Resource, page, limit int) []*domain.Resource {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})

	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if limit <= 0 || start >= len(items) {
		return []*domain.Resource{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
