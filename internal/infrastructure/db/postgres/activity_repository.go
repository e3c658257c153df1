package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

type activityRecord struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	Kind       string    `gorm:"type:varchar(64);index:idx_activity_target,priority:1"`
	ResourceID string    `gorm:"type:varchar(36);index:idx_activity_target,priority:2"`
	ActorID    string    `gorm:"type:varchar(36)"`
	Action     string    `gorm:"type:varchar(16)"`
	At         time.Time `gorm:"index"`
}

func (activityRecord) TableName() string { return "activity_events" }

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db.Gorm}
}

func (r *ActivityRepository) Insert(ctx context.Context, e *domain.ActivityEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rec := activityRecord{
		ID:         e.ID,
		Kind:       e.Kind,
		ResourceID: e.ResourceID,
		ActorID:    e.ActorID,
		Action:     string(e.Action),
		At:         e.At,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) List(ctx context.Context, f ports.ActivityFilter) ([]*domain.ActivityEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := r.db.WithContext(ctx).Model(&activityRecord{})
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.ResourceID != "" {
		q = q.Where("resource_id = ?", f.ResourceID)
	}

	var recs []activityRecord
	if err := q.Order("at DESC").Limit(f.Limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	events := make([]*domain.ActivityEvent, 0, len(recs))
	for _, rec := range recs {
		events = append(events, &domain.ActivityEvent{
			ID:         rec.ID,
			Kind:       rec.Kind,
			ResourceID: rec.ResourceID,
			ActorID:    rec.ActorID,
			Action:     domain.ActivityAction(rec.Action),
			At:         rec.At.UTC(),
		})
	}
	return events, nil
}
