package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/thejerf/abtime"

	"github.com/motogear/resource-api/internal/core/domain"
)

const (
	MinTokenTTL     = 2 * time.Hour
	MaxTokenTTL     = 24 * time.Hour
	DefaultTokenTTL = 24 * time.Hour
)

// Claims is the JWT payload. Subject carries the user id.
type Claims struct {
	Handle string `json:"handle,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens. The secret is fixed
// for the lifetime of the process.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  abtime.AbstractTime
}

// NewTokenManager clamps ttl into [MinTokenTTL, MaxTokenTTL]; zero means
// DefaultTokenTTL. A nil clock uses real time.
func NewTokenManager(secret string, ttl time.Duration, clock abtime.AbstractTime) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token manager: empty signing secret")
	}
	switch {
	case ttl <= 0:
		ttl = DefaultTokenTTL
	case ttl < MinTokenTTL:
		ttl = MinTokenTTL
	case ttl > MaxTokenTTL:
		ttl = MaxTokenTTL
	}
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, clock: clock}, nil
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for userID valid for the configured TTL.
func (m *TokenManager) Issue(userID, handle string) (string, time.Time, error) {
	now := m.clock.Now().UTC()
	exp := now.Add(m.ttl)
	claims := Claims{
		Handle: handle,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses token and checks its signature, algorithm and expiry. Every
// failure wraps domain.ErrInvalidToken.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
