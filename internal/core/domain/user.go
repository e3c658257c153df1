package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Authentication gate rejections. All three surface as 401.
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUnknownSubject    = errors.New("unknown subject")

	ErrInvalidToken = errors.New("invalid token")
	ErrRateLimited  = errors.New("too many requests")
)

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Role   string `json:"role"`
}

// Identity returns the request identity for u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Handle: u.Handle, Role: u.Role}
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// NormalizeHandle trims and lower-cases a handle so that uniqueness is
// case-insensitive.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
