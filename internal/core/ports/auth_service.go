package ports

import (
	"context"
	"time"

	"github.com/motogear/resource-api/internal/core/domain"
)

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, handle, password string) (*AuthResult, error)
	Login(ctx context.Context, handle, password string) (*AuthResult, error)
	// Authenticate verifies a bearer token and resolves its subject against
	// the credential store.
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
	Profile(ctx context.Context, id string) (*domain.User, error)
}
