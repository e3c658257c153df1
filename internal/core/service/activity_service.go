package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityService persists and reads the resource audit trail.
type ActivityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log}
}

// Record stores event, assigning an id when it has none.
func (s *ActivityService) Record(ctx context.Context, event domain.ActivityEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	s.log.Debug().
		Str("kind", event.Kind).
		Str("resource_id", event.ResourceID).
		Str("action", string(event.Action)).
		Msg("activity recorded")
	return nil
}

func (s *ActivityService) List(ctx context.Context, filter ports.ActivityFilter) ([]*domain.ActivityEvent, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultActivityLimit
	}
	if filter.Limit > maxActivityLimit {
		filter.Limit = maxActivityLimit
	}
	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	if events == nil {
		events = []*domain.ActivityEvent{}
	}
	return events, nil
}
