package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/infrastructure/config"
)

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), &config.Config{StoreBackend: config.BackendMemory}, domain.BuiltinKinds(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Users == nil || s.Resources == nil || s.Activity == nil {
		t.Fatalf("incomplete stores: %+v", s)
	}
	if len(s.Health) != 0 {
		t.Fatalf("memory backend should have no readiness checks")
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpen_File(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	cfg := &config.Config{StoreBackend: config.BackendFile, DataDir: dir}

	s, err := Open(context.Background(), cfg, domain.BuiltinKinds(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Users.Insert(context.Background(), &domain.User{ID: "u-1", Handle: "alice", Role: domain.RoleUser}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "users.json")); err != nil {
		t.Fatalf("users.json not written: %v", err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), &config.Config{StoreBackend: "sqlite"}, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected an error")
	}
}
