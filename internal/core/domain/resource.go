package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrForbidden        = errors.New("access forbidden")
	ErrInvalidInput     = errors.New("invalid input")
)

// Immutable field names. They are never taken from a request body.
const (
	FieldID        = "id"
	FieldOwnerID   = "owner_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// IsReservedField reports whether name is managed by the server.
func IsReservedField(name string) bool {
	switch name {
	case FieldID, FieldOwnerID, FieldCreatedAt, FieldUpdatedAt:
		return true
	}
	return false
}

// Resource is an owned record of some kind. Domain fields live in Fields;
// the envelope fields are managed by the service and never client-suppliable.
type Resource struct {
	ID        string         `json:"id" bson:"_id"`
	Kind      string         `json:"-" bson:"kind"`
	OwnerID   string         `json:"owner_id" bson:"owner_id"`
	Fields    map[string]any `json:"fields" bson:"fields"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

// Clone returns a copy whose Fields map can be mutated independently.
func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}
	c := *r
	c.Fields = make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	return &c
}

// CanModify reports whether id may mutate r: owners and admins only.
func (r *Resource) CanModify(id Identity) bool {
	return r.OwnerID == id.ID || id.IsAdmin()
}

// ValidationError lists the request fields that were missing or rejected.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, strings.Join(e.Invalid, "; "))
	}
	if len(parts) == 0 {
		return ErrInvalidInput.Error()
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Empty reports whether no problems were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

func (e *ValidationError) AddMissing(field string) {
	e.Missing = append(e.Missing, field)
}

func (e *ValidationError) AddInvalid(field, format string, args ...any) {
	e.Invalid = append(e.Invalid, field+" "+fmt.Sprintf(format, args...))
}
