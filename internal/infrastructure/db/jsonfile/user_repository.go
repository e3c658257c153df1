package jsonfile

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/infrastructure/db/memory"
)

// userDoc is the on-disk shape; unlike domain.User it keeps the hash.
type userDoc struct {
	domain.User
	PasswordHash string `json:"password_hash"`
}

// UserRepository is the credential store backed by users.json.
type UserRepository struct {
	mu   sync.Mutex
	path string
	mem  *memory.UserRepository
}

func NewUserRepository(dir string) (*UserRepository, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	r := &UserRepository{path: filepath.Join(dir, usersFile), mem: memory.NewUserRepository()}

	var docs []userDoc
	if err := readJSON(r.path, &docs); err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		u := d.User
		u.PasswordHash = d.PasswordHash
		users = append(users, &u)
	}
	r.mem.Load(users)
	return r, nil
}

// Insert stores user and rewrites users.json. When the file cannot be
// written the insert is undone and the handle stays free.
func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := r.mem.Users()
	created, err := r.mem.Insert(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := r.flush(); err != nil {
		r.mem.Load(before)
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByHandle(ctx context.Context, handle string) (*domain.User, error) {
	return r.mem.FindByHandle(ctx, handle)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.mem.FindByID(ctx, id)
}

func (r *UserRepository) flush() error {
	users := r.mem.Users()
	docs := make([]userDoc, 0, len(users))
	for _, u := range users {
		docs = append(docs, userDoc{User: *u, PasswordHash: u.PasswordHash})
	}
	return writeJSON(r.path, docs)
}
