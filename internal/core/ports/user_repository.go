package ports

import (
	"context"

	"github.com/motogear/resource-api/internal/core/domain"
)

// UserRepository is the credential store. Lookups return
// domain.ErrUserNotFound when nothing matches; Insert returns
// domain.ErrUserExists when the handle is already taken.
type UserRepository interface {
	FindByHandle(ctx context.Context, handle string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
}
