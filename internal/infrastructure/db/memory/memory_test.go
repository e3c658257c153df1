package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-test/deep"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestUserRepository_UniqueHandle(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	if _, err := repo.Insert(ctx, &domain.User{ID: "1", Handle: "alice"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := repo.Insert(ctx, &domain.User{ID: "2", Handle: "alice"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	u, err := repo.FindByHandle(ctx, "alice")
	if err != nil || u.ID != "1" {
		t.Fatalf("FindByHandle: %+v, %v", u, err)
	}
	if _, err := repo.FindByID(ctx, "2"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_ConcurrentRegistration(t *testing.T) {
	repo := NewUserRepository()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Insert(context.Background(), &domain.User{ID: fmt.Sprint(i), Handle: "same"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one insert to win, got %d", succeeded)
	}
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u, _ := repo.Insert(ctx, &domain.User{Handle: "bob", Role: domain.RoleUser})
	if u.ID == "" {
		t.Fatalf("expected generated id")
	}
	u.Role = domain.RoleAdmin

	stored, _ := repo.FindByID(ctx, u.ID)
	if stored.Role != domain.RoleUser {
		t.Fatalf("caller mutated stored user")
	}
}

func TestResourceRepository_CRUD(t *testing.T) {
	repo := NewResourceRepository()
	ctx := context.Background()

	res := &domain.Resource{
		ID: "r1", Kind: "tasks", OwnerID: "u1",
		Fields:    map[string]any{"title": "a"},
		CreatedAt: epoch, UpdatedAt: epoch,
	}
	if err := repo.Insert(ctx, res); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	res.Fields["title"] = "mutated"

	got, err := repo.FindByID(ctx, "tasks", "r1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Fields["title"] != "a" {
		t.Fatalf("stored record shares caller's map")
	}
	if _, err := repo.FindByID(ctx, "movies", "r1"); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("expected kind isolation, got %v", err)
	}

	upd := got.Clone()
	upd.OwnerID = "intruder"
	upd.Fields["title"] = "b"
	upd.UpdatedAt = epoch.Add(time.Minute)
	if err := repo.Update(ctx, upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.FindByID(ctx, "tasks", "r1")
	want := &domain.Resource{
		ID: "r1", Kind: "tasks", OwnerID: "u1",
		Fields:    map[string]any{"title": "b"},
		CreatedAt: epoch, UpdatedAt: epoch.Add(time.Minute),
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("unexpected record after update: %v", diff)
	}

	if err := repo.Delete(ctx, "tasks", "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "tasks", "r1"); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("second delete: expected ErrResourceNotFound, got %v", err)
	}
	if err := repo.Update(ctx, upd); !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("update after delete: expected ErrResourceNotFound, got %v", err)
	}
}

func TestResourceRepository_List(t *testing.T) {
	repo := NewResourceRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		owner := "u1"
		if i%2 == 1 {
			owner = "u2"
		}
		_ = repo.Insert(ctx, &domain.Resource{
			ID: fmt.Sprintf("r%d", i), Kind: "movies", OwnerID: owner,
			Fields: map[string]any{}, CreatedAt: epoch.Add(time.Duration(i) * time.Minute),
		})
	}

	items, total, err := repo.List(ctx, ports.ListResourcesFilter{Kind: "movies", Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 || len(items) != 2 || items[0].ID != "r4" || items[1].ID != "r3" {
		t.Fatalf("unexpected first page: total=%d ids=%v", total, ids(items))
	}

	items, total, _ = repo.List(ctx, ports.ListResourcesFilter{Kind: "movies", OwnerID: "u2", Page: 1, Limit: 10})
	if total != 2 || len(items) != 2 || items[0].ID != "r3" {
		t.Fatalf("unexpected owner page: total=%d ids=%v", total, ids(items))
	}

	items, _, _ = repo.List(ctx, ports.ListResourcesFilter{Kind: "movies", Page: 9, Limit: 10})
	if len(items) != 0 {
		t.Fatalf("expected empty page past the end, got %v", ids(items))
	}
}

func TestActivityRepository_Ring(t *testing.T) {
	repo := NewActivityRepository(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		kind := "tasks"
		if i == 3 {
			kind = "movies"
		}
		_ = repo.Insert(ctx, &domain.ActivityEvent{ID: fmt.Sprint(i), Kind: kind})
	}

	events, _ := repo.List(ctx, ports.ActivityFilter{})
	if len(events) != 3 || events[0].ID != "4" || events[2].ID != "2" {
		t.Fatalf("expected newest three, got %v", eventIDs(events))
	}

	events, _ = repo.List(ctx, ports.ActivityFilter{Kind: "tasks", Limit: 5})
	if len(events) != 2 || events[0].ID != "4" || events[1].ID != "2" {
		t.Fatalf("unexpected filtered events: %v", eventIDs(events))
	}
}

func ids(items []*domain.Resource) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func eventIDs(events []*domain.ActivityEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}
