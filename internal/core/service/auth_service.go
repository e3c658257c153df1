package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thejerf/abtime"
	"golang.org/x/crypto/bcrypt"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

const (
	DefaultMinPasswordLength = 6
	// MaxPasswordBytes is bcrypt's input limit. It applies to every algorithm.
	MaxPasswordBytes = 72
)

// PasswordHasher is the one-way password primitive.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) bool
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(userID, handle string) (string, time.Time, error)
	Verify(token string) (*Claims, error)
}

// AuthConfig tunes AuthService.
type AuthConfig struct {
	MinPasswordLength int
	Clock             abtime.AbstractTime
}

// AuthService implements registration, login and token authentication.
type AuthService struct {
	repo     ports.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	clock    abtime.AbstractTime
	minPass  int
	log      zerolog.Logger
	decoy    string
	decoyErr error
	once     sync.Once
}

func NewAuthService(repo ports.UserRepository, hasher PasswordHasher, tokens TokenIssuer, cfg AuthConfig, log zerolog.Logger) *AuthService {
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = DefaultMinPasswordLength
	}
	if cfg.Clock == nil {
		cfg.Clock = abtime.NewRealTime()
	}
	return &AuthService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		clock:   cfg.Clock,
		minPass: cfg.MinPasswordLength,
		log:     log,
	}
}

func (s *AuthService) Register(ctx context.Context, handle, password string) (*ports.AuthResult, error) {
	handle = domain.NormalizeHandle(handle)
	if err := s.checkCredentials(handle, password, true); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, handle, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("handle", user.Handle).Msg("user registered")

	return s.issue(user)
}

// Login answers unknown handles and wrong passwords with the same
// ErrInvalidCredentials, and hashes in both paths so timing does not reveal
// which one happened.
func (s *AuthService) Login(ctx context.Context, handle, password string) (*ports.AuthResult, error) {
	handle = domain.NormalizeHandle(handle)
	if err := s.checkCredentials(handle, password, false); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.burnHash(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Identity{}, domain.ErrUnknownSubject
		}
		return domain.Identity{}, fmt.Errorf("authenticate: %w", err)
	}
	return user.Identity(), nil
}

func (s *AuthService) Profile(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, handle, password string) error {
	handle = domain.NormalizeHandle(handle)
	if handle == "" || password == "" {
		return nil
	}

	existing, err := s.repo.FindByHandle(ctx, handle)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.log.Warn().Str("handle", handle).Msg("bootstrap admin handle belongs to a non-admin user")
		}
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("ensure admin: %w", err)
	}

	user, err := s.createUser(ctx, handle, password, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("ensure admin: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("handle", handle).Msg("bootstrap admin created")
	return nil
}

func (s *AuthService) checkCredentials(handle, password string, registering bool) error {
	verr := &domain.ValidationError{}
	if handle == "" {
		verr.AddMissing("handle")
	}
	if password == "" {
		verr.AddMissing("password")
	} else if registering {
		switch {
		case len(password) < s.minPass:
			verr.AddInvalid("password", "must be at least %d characters", s.minPass)
		case len(password) > MaxPasswordBytes:
			verr.AddInvalid("password", "must be at most %d bytes", MaxPasswordBytes)
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// createUser re-checks the handle right before inserting. The store's own
// uniqueness check still decides concurrent registrations.
func (s *AuthService) createUser(ctx context.Context, handle, password, role string) (*domain.User, error) {
	if _, err := s.repo.FindByHandle(ctx, handle); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		verr := &domain.ValidationError{}
		verr.AddInvalid("password", "must be at most %d bytes", MaxPasswordBytes)
		return nil, verr
	}
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.clock.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Handle:       handle,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return created, nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, exp, err := s.tokens.Issue(user.ID, user.Handle)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) burnHash(password string) {
	s.once.Do(func() {
		s.decoy, s.decoyErr = s.hasher.Hash(uuid.NewString())
	})
	if s.decoyErr == nil {
		_ = s.hasher.Verify(password, s.decoy)
	}
}
