package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

// credentialsRequest accepts the handle under any of its historical names.
type credentialsRequest struct {
	Handle   string `json:"handle"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r credentialsRequest) handle() string {
	switch {
	case r.Handle != "":
		return r.Handle
	case r.Username != "":
		return r.Username
	default:
		return r.Email
	}
}

type authResponse struct {
	ID        string    `json:"id"`
	Handle    string    `json:"handle"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Handle    string    `json:"handle"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Resources ---

type listQuery struct {
	Page    int    `query:"page"     validate:"min=0"`
	Limit   int    `query:"limit"    validate:"min=0"`
	OwnerID string `query:"owner_id" validate:"omitempty,max=64"`
}

// resourceResponse is a flat JSON object: the envelope keys plus every
// domain field of the record.
type resourceResponse map[string]any

type listResponse struct {
	Items      []resourceResponse `json:"items"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Total      int64              `json:"total"`
	TotalPages int                `json:"total_pages"`
}

// --- Activity ---

type activityQuery struct {
	Kind       string `query:"kind"        validate:"omitempty,max=64"`
	ResourceID string `query:"resource_id" validate:"omitempty,max=64"`
	Limit      int    `query:"limit"       validate:"min=0,max=200"`
}

type activityResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	ResourceID string    `json:"resource_id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	At         time.Time `json:"at"`
}
