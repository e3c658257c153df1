package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/abtime"
	"golang.org/x/crypto/bcrypt"

	"github.com/motogear/resource-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID     map[string]*domain.User
	findErr  error // if set, every lookup returns this error
	inserted int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Handle == user.Handle {
			return nil, domain.ErrUserExists
		}
	}
	r.inserted++
	r.byID[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByHandle(_ context.Context, handle string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Handle == handle {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// countingHasher records calls so tests can assert that both login failure
// paths hash.
type countingHasher struct {
	*Hasher
	verifies int
}

func (h *countingHasher) Verify(plaintext, encoded string) bool {
	h.verifies++
	return h.Hasher.Verify(plaintext, encoded)
}

var authEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAuthService(t *testing.T, repo *stubUserRepo) (*AuthService, *abtime.ManualTime) {
	t.Helper()
	clock := abtime.NewManualAtTime(authEpoch)
	tokens, err := NewTokenManager("test-secret", 2*time.Hour, clock)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	svc := NewAuthService(repo, NewHasher(AlgoBcrypt, bcrypt.MinCost), tokens,
		AuthConfig{Clock: clock}, zerolog.Nop())
	return svc, clock
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	res, err := svc.Register(context.Background(), "  Alice ", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.Handle != "alice" {
		t.Fatalf("expected normalized handle alice, got %q", res.User.Handle)
	}
	if res.User.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", res.User.Role)
	}
	if res.User.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token")
	}
	if !res.ExpiresAt.Equal(authEpoch.Add(2 * time.Hour)) {
		t.Fatalf("unexpected expiry: %v", res.ExpiresAt)
	}
	if !res.User.CreatedAt.Equal(authEpoch) {
		t.Fatalf("unexpected created_at: %v", res.User.CreatedAt)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	_, err := svc.Register(context.Background(), "", "")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Missing) != 2 {
		t.Fatalf("expected handle and password missing, got %v", verr.Missing)
	}

	_, err = svc.Register(context.Background(), "bob", "123")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
	if !strings.Contains(err.Error(), "at least 6") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "bob", "password"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "BOB", "password2"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if repo.inserted != 1 {
		t.Fatalf("expected one insert, got %d", repo.inserted)
	}
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "longpw", strings.Repeat("a", 80))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Invalid) != 1 || verr.Invalid[0] != "password must be at most 72 bytes" {
		t.Fatalf("unexpected message: %v", verr.Invalid)
	}
	if repo.inserted != 0 {
		t.Fatalf("nothing should be stored, got %d inserts", repo.inserted)
	}

	if _, err := svc.Register(context.Background(), "edge", strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("a %d byte password should register: %v", MaxPasswordBytes, err)
	}
}

func TestAuthService_EnsureAdmin_PasswordTooLong(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	err := svc.EnsureAdmin(context.Background(), "root", strings.Repeat("r", 100))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	reg, err := svc.Register(context.Background(), "carol", "s3cret!")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "Carol", "s3cret!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.User.ID != reg.User.ID {
		t.Fatalf("login resolved a different user: %s", res.User.ID)
	}

	id, err := svc.Authenticate(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("token from login did not authenticate: %v", err)
	}
	if id.ID != reg.User.ID || id.Handle != "carol" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	clock := abtime.NewManualAtTime(authEpoch)
	tokens, _ := NewTokenManager("test-secret", 0, clock)
	hasher := &countingHasher{Hasher: NewHasher(AlgoBcrypt, bcrypt.MinCost)}
	svc := NewAuthService(repo, hasher, tokens, AuthConfig{Clock: clock}, zerolog.Nop())

	if _, err := svc.Register(context.Background(), "dave", "goodpass"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPass := svc.Login(context.Background(), "dave", "badpass")
	_, unknown := svc.Login(context.Background(), "ghost", "badpass")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) || !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPass, unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPass, unknown)
	}
	if hasher.verifies != 2 {
		t.Fatalf("expected a hash verification on both paths, got %d", hasher.verifies)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	if _, err := svc.Login(context.Background(), "dave", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)
	repo.findErr = errors.New("connection reset")

	_, err := svc.Login(context.Background(), "dave", "whatever")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Authenticate
// ---------------------------------------------------------------------------

func TestAuthService_Authenticate_Expired(t *testing.T) {
	svc, clock := newTestAuthService(t, newStubUserRepo())

	res, err := svc.Register(context.Background(), "erin", "password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	clock.Advance(2*time.Hour + time.Second)

	if _, err := svc.Authenticate(context.Background(), res.Token); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestAuthService_Authenticate_UnknownSubject(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	res, err := svc.Register(context.Background(), "frank", "password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	delete(repo.byID, res.User.ID)

	if _, err := svc.Authenticate(context.Background(), res.Token); !errors.Is(err, domain.ErrUnknownSubject) {
		t.Fatalf("expected ErrUnknownSubject, got %v", err)
	}
}

func TestAuthService_Authenticate_RoleFromStore(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	res, err := svc.Register(context.Background(), "gina", "password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	repo.byID[res.User.ID].Role = domain.RoleAdmin

	id, err := svc.Authenticate(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !id.IsAdmin() {
		t.Fatalf("expected role to be read from the store, got %s", id.Role)
	}
}

// ---------------------------------------------------------------------------
// EnsureAdmin / Profile
// ---------------------------------------------------------------------------

func TestAuthService_EnsureAdmin(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	if err := svc.EnsureAdmin(context.Background(), "Root", "rootpass"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if err := svc.EnsureAdmin(context.Background(), "root", "rootpass"); err != nil {
		t.Fatalf("second EnsureAdmin: %v", err)
	}
	if repo.inserted != 1 {
		t.Fatalf("expected a single admin insert, got %d", repo.inserted)
	}

	res, err := svc.Login(context.Background(), "root", "rootpass")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if res.User.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", res.User.Role)
	}

	if err := svc.EnsureAdmin(context.Background(), "", ""); err != nil {
		t.Fatalf("empty bootstrap credentials should be a no-op: %v", err)
	}
}

func TestAuthService_Profile(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserRepo())

	res, _ := svc.Register(context.Background(), "hank", "password")
	u, err := svc.Profile(context.Background(), res.User.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if u.Handle != "hank" {
		t.Fatalf("unexpected profile: %+v", u)
	}

	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
