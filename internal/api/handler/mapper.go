package handler

import (
	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

// --- Service result → HTTP response ---

func toResourceResponse(r *domain.Resource) resourceResponse {
	out := make(resourceResponse, len(r.Fields)+4)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[domain.FieldID] = r.ID
	out[domain.FieldOwnerID] = r.OwnerID
	out[domain.FieldCreatedAt] = r.CreatedAt.UTC()
	out[domain.FieldUpdatedAt] = r.UpdatedAt.UTC()
	return out
}

func toListResponse(res *ports.ListResourcesResult) listResponse {
	items := make([]resourceResponse, 0, len(res.Items))
	for _, r := range res.Items {
		items = append(items, toResourceResponse(r))
	}
	return listResponse{
		Items:      items,
		Page:       res.Page,
		Limit:      res.Limit,
		Total:      res.Total,
		TotalPages: res.TotalPages,
	}
}

func toAuthResponse(res *ports.AuthResult) authResponse {
	return authResponse{
		ID:        res.User.ID,
		Handle:    res.User.Handle,
		Role:      res.User.Role,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC(),
	}
}

func toActivityResponse(events []*domain.ActivityEvent) []activityResponse {
	out := make([]activityResponse, 0, len(events))
	for _, e := range events {
		out = append(out, activityResponse{
			ID:         e.ID,
			Kind:       e.Kind,
			ResourceID: e.ResourceID,
			ActorID:    e.ActorID,
			Action:     string(e.Action),
			At:         e.At.UTC(),
		})
	}
	return out
}
