package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/motogear/resource-api/internal/core/domain"
)

// UserRepository is a process-local credential store. Handle uniqueness is
// decided under the write lock.
type UserRepository struct {
	mu       sync.RWMutex
	byID     map[string]*domain.User
	byHandle map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:     make(map[string]*domain.User),
		byHandle: make(map[string]string),
	}
}

func (r *UserRepository) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byHandle[user.Handle]; taken {
		return nil, domain.ErrUserExists
	}
	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.byID[stored.ID] = &stored
	r.byHandle[stored.Handle] = stored.ID

	out := stored
	return &out, nil
}

func (r *UserRepository) FindByHandle(_ context.Context, handle string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHandle[handle]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *stored
	return &u, nil
}

// Users returns a snapshot of every stored user.
func (r *UserRepository) Users() []*domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		c := *u
		out = append(out, &c)
	}
	return out
}

// Load replaces the contents of the store.
func (r *UserRepository) Load(users []*domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[string]*domain.User, len(users))
	r.byHandle = make(map[string]string, len(users))
	for _, u := range users {
		c := *u
		r.byID[c.ID] = &c
		r.byHandle[c.Handle] = c.ID
	}
}
