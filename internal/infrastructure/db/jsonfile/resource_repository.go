package jsonfile

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
	"github.com/motogear/resource-api/internal/infrastructure/db/memory"
)

// ResourceRepository stores each kind in <kind>.json.
type ResourceRepository struct {
	mu  sync.Mutex
	dir string
	mem *memory.ResourceRepository
}

func NewResourceRepository(dir string, kinds []domain.ResourceKind) (*ResourceRepository, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	r := &ResourceRepository{dir: dir, mem: memory.NewResourceRepository()}
	for _, k := range kinds {
		var items []*domain.Resource
		if err := readJSON(r.path(k.Name), &items); err != nil {
			return nil, err
		}
		for _, it := range items {
			if it.Fields == nil {
				it.Fields = map[string]any{}
			}
		}
		r.mem.Load(k.Name, items)
	}
	return r, nil
}

func (r *ResourceRepository) path(kind string) string {
	return filepath.Join(r.dir, kind+".json")
}

func (r *ResourceRepository) Insert(ctx context.Context, res *domain.Resource) error {
	return r.mutate(res.Kind, func() error { return r.mem.Insert(ctx, res) })
}

func (r *ResourceRepository) FindByID(ctx context.Context, kind, id string) (*domain.Resource, error) {
	return r.mem.FindByID(ctx, kind, id)
}

func (r *ResourceRepository) List(ctx context.Context, f ports.ListResourcesFilter) ([]*domain.Resource, int64, error) {
	return r.mem.List(ctx, f)
}

func (r *ResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	return r.mutate(res.Kind, func() error { return r.mem.Update(ctx, res) })
}

func (r *ResourceRepository) Delete(ctx context.Context, kind, id string) error {
	return r.mutate(kind, func() error { return r.mem.Delete(ctx, kind, id) })
}

// mutate applies fn to the mirror and rewrites <kind>.json. A failed write
// restores the mirror to its previous contents.
func (r *ResourceRepository) mutate(kind string, fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := r.mem.Snapshot(kind)
	if err := fn(); err != nil {
		return err
	}
	items := r.mem.Snapshot(kind)
	if err := writeJSON(r.path(kind), memory.Page(items, 1, len(items))); err != nil {
		r.mem.Load(kind, before)
		return err
	}
	return nil
}
