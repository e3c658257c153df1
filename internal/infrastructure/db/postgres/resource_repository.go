package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

// resourceRecord keeps every kind in one table; domain fields are a jsonb
// document.
type resourceRecord struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)"`
	Kind      string         `gorm:"type:varchar(64);not null;index:idx_resources_kind_created,priority:1"`
	OwnerID   string         `gorm:"type:varchar(36);not null;index"`
	Fields    map[string]any `gorm:"serializer:json;type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false;index:idx_resources_kind_created,priority:2,sort:desc"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false"`
}

func (resourceRecord) TableName() string { return "resources" }

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *DB) *ResourceRepository {
	return &ResourceRepository{db: db.Gorm}
}

func (r *ResourceRepository) Insert(ctx context.Context, res *domain.Resource) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rec := toRecord(res)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert %s: %w", res.Kind, err)
	}
	return nil
}

func (r *ResourceRepository) FindByID(ctx context.Context, kind, id string) (*domain.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec resourceRecord
	err := r.db.WithContext(ctx).Where("id = ? AND kind = ?", id, kind).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return rec.toDomain(), nil
}

func (r *ResourceRepository) List(ctx context.Context, f ports.ListResourcesFilter) ([]*domain.Resource, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("kind = ?", f.Kind)
		if f.OwnerID != "" {
			db = db.Where("owner_id = ?", f.OwnerID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&resourceRecord{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", f.Kind, err)
	}

	var recs []resourceRecord
	err := r.db.WithContext(ctx).Scopes(filter).Order("created_at DESC").Order("id DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", f.Kind, err)
	}

	items := make([]*domain.Resource, 0, len(recs))
	for i := range recs {
		items = append(items, recs[i].toDomain())
	}
	return items, total, nil
}

func (r *ResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rec := toRecord(res)
	out := r.db.WithContext(ctx).Model(&resourceRecord{}).
		Where("id = ? AND kind = ?", res.ID, res.Kind).
		Select("Fields", "UpdatedAt").
		Updates(&rec)
	if out.Error != nil {
		return fmt.Errorf("update %s: %w", res.Kind, out.Error)
	}
	if out.RowsAffected == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *ResourceRepository) Delete(ctx context.Context, kind, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out := r.db.WithContext(ctx).Where("id = ? AND kind = ?", id, kind).Delete(&resourceRecord{})
	if out.Error != nil {
		return fmt.Errorf("delete %s: %w", kind, out.Error)
	}
	if out.RowsAffected == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func toRecord(res *domain.Resource) resourceRecord {
	return resourceRecord{
		ID:        res.ID,
		Kind:      res.Kind,
		OwnerID:   res.OwnerID,
		Fields:    res.Fields,
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
}

func (rec resourceRecord) toDomain() *domain.Resource {
	fields := rec.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return &domain.Resource{
		ID:        rec.ID,
		Kind:      rec.Kind,
		OwnerID:   rec.OwnerID,
		Fields:    fields,
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
}
