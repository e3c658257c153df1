package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thejerf/abtime"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type noopPublisher struct{}

func (noopPublisher) Enqueue(domain.ActivityEvent) {}

// ResourceService implements CRUD for one resource kind. Authorization of
// single records happens before Update and Delete are called; both still
// refuse a caller that is neither owner nor admin.
type ResourceService struct {
	kind     domain.ResourceKind
	repo     ports.ResourceRepository
	activity ports.ActivityPublisher
	clock    abtime.AbstractTime
	validate *validator.Validate
	log      zerolog.Logger
}

func NewResourceService(
	kind domain.ResourceKind,
	repo ports.ResourceRepository,
	activity ports.ActivityPublisher,
	clock abtime.AbstractTime,
	log zerolog.Logger,
) *ResourceService {
	if activity == nil {
		activity = noopPublisher{}
	}
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &ResourceService{
		kind:     kind,
		repo:     repo,
		activity: activity,
		clock:    clock,
		validate: validator.New(),
		log:      log.With().Str("kind", kind.Name).Logger(),
	}
}

func (s *ResourceService) Kind() domain.ResourceKind { return s.kind }

// Create validates fields, applies defaults and stores a record owned by owner.
// Server-managed and unknown keys in fields are ignored.
func (s *ResourceService) Create(ctx context.Context, owner domain.Identity, fields map[string]any) (*domain.Resource, error) {
	clean := make(map[string]any, len(s.kind.Fields))
	verr := &domain.ValidationError{}

	for _, field := range s.kind.Fields {
		var value any
		if raw, present := fields[field.Name]; present && raw != nil {
			v, ok := s.coerce(field, raw, verr)
			if !ok {
				continue
			}
			value = v
		}
		switch {
		case value != nil:
			clean[field.Name] = value
		case field.Required:
			verr.AddMissing(field.Name)
		case field.Default != nil:
			clean[field.Name] = field.Default
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	now := s.clock.Now().UTC()
	r := &domain.Resource{
		ID:        uuid.NewString(),
		Kind:      s.kind.Name,
		OwnerID:   owner.ID,
		Fields:    clean,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, r); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind.Name, err)
	}

	s.publish(domain.ActionCreated, r.ID, owner.ID, now)
	return r, nil
}

func (s *ResourceService) Get(ctx context.Context, id string) (*domain.Resource, error) {
	r, err := s.repo.FindByID(ctx, s.kind.Name, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.kind.Name, err)
	}
	return r, nil
}

// List pages through the kind newest first. For owner-scoped kinds a
// non-admin only ever sees their own records.
func (s *ResourceService) List(ctx context.Context, input ports.ListResourcesInput) (*ports.ListResourcesResult, error) {
	page, limit := input.Page, input.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	ownerID := input.OwnerID
	if s.kind.ListScope == domain.ScopeOwner && !input.Identity.IsAdmin() {
		if ownerID != "" && ownerID != input.Identity.ID {
			return &ports.ListResourcesResult{Items: []*domain.Resource{}, Page: page, Limit: limit}, nil
		}
		ownerID = input.Identity.ID
	}

	items, total, err := s.repo.List(ctx, ports.ListResourcesFilter{
		Kind:    s.kind.Name,
		OwnerID: ownerID,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind.Name, err)
	}
	if items == nil {
		items = []*domain.Resource{}
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return &ports.ListResourcesResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Update merges patch into existing. A null value resets a field to its
// default, or removes it when it has none; required fields cannot be nulled.
func (s *ResourceService) Update(ctx context.Context, actor domain.Identity, existing *domain.Resource, patch map[string]any) (*domain.Resource, error) {
	if !existing.CanModify(actor) {
		return nil, domain.ErrForbidden
	}

	merged := existing.Clone()
	verr := &domain.ValidationError{}

	for _, field := range s.kind.Fields {
		raw, present := patch[field.Name]
		if !present {
			continue
		}
		var value any
		if raw != nil {
			v, ok := s.coerce(field, raw, verr)
			if !ok {
				continue
			}
			value = v
		}
		switch {
		case value != nil:
			merged.Fields[field.Name] = value
		case field.Required:
			verr.AddInvalid(field.Name, "must not be empty")
		case field.Default != nil:
			merged.Fields[field.Name] = field.Default
		default:
			delete(merged.Fields, field.Name)
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	now := s.clock.Now().UTC()
	if now.Before(existing.UpdatedAt) {
		now = existing.UpdatedAt
	}
	merged.UpdatedAt = now

	if err := s.repo.Update(ctx, merged); err != nil {
		return nil, fmt.Errorf("update %s: %w", s.kind.Name, err)
	}

	s.publish(domain.ActionUpdated, merged.ID, actor.ID, now)
	return merged, nil
}

func (s *ResourceService) Delete(ctx context.Context, actor domain.Identity, existing *domain.Resource) error {
	if !existing.CanModify(actor) {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, s.kind.Name, existing.ID); err != nil {
		return fmt.Errorf("delete %s: %w", s.kind.Name, err)
	}
	s.publish(domain.ActionDeleted, existing.ID, actor.ID, s.clock.Now().UTC())
	return nil
}

func (s *ResourceService) publish(action domain.ActivityAction, resourceID, actorID string, at time.Time) {
	s.activity.Enqueue(domain.ActivityEvent{
		Kind:       s.kind.Name,
		ResourceID: resourceID,
		ActorID:    actorID,
		Action:     action,
		At:         at,
	})
	s.log.Debug().Str("resource_id", resourceID).Str("actor_id", actorID).Str("action", string(action)).Msg("resource mutated")
}

// coerce converts raw to the field's Go type and applies its rules. It
// returns (nil, true) for a blank string, which callers treat as absent.
func (s *ResourceService) coerce(field domain.FieldSpec, raw any, verr *domain.ValidationError) (any, bool) {
	var value any
	switch field.Type {
	case domain.FieldString:
		str, ok := raw.(string)
		if !ok {
			verr.AddInvalid(field.Name, "must be a string")
			return nil, false
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil, true
		}
		value = str
	case domain.FieldNumber:
		n, ok := toFloat(raw)
		if !ok {
			verr.AddInvalid(field.Name, "must be a number")
			return nil, false
		}
		value = n
	case domain.FieldBool:
		b, ok := raw.(bool)
		if !ok {
			verr.AddInvalid(field.Name, "must be a boolean")
			return nil, false
		}
		value = b
	default:
		verr.AddInvalid(field.Name, "has an unsupported type")
		return nil, false
	}

	if field.Rules != "" {
		if err := s.validate.Var(value, field.Rules); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) && len(ve) > 0 {
				verr.AddInvalid(field.Name, "%s", ruleMessage(ve[0]))
			} else {
				verr.AddInvalid(field.Name, "is invalid")
			}
			return nil, false
		}
	}
	return value, true
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
