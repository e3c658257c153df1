package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgoBcrypt   = "bcrypt"
	AlgoArgon2id = "argon2id"

	argonPrefix = "argon2id$"
)

// ArgonParams tunes the argon2id encoder.
type ArgonParams struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     int
	KeyLen      uint32
}

var DefaultArgon = ArgonParams{
	Memory:      64 * 1024,
	Time:        2,
	Parallelism: 1,
	SaltLen:     16,
	KeyLen:      32,
}

// Hasher hashes new passwords with the configured algorithm and verifies
// both bcrypt and argon2id encodings, so switching algorithms does not lock
// out existing accounts.
type Hasher struct {
	algo       string
	bcryptCost int
	argon      ArgonParams
}

// NewHasher returns a Hasher for algo. Unknown algorithms fall back to bcrypt;
// a cost outside bcrypt's range uses bcrypt.DefaultCost.
func NewHasher(algo string, bcryptCost int) *Hasher {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	algo = strings.ToLower(strings.TrimSpace(algo))
	if algo != AlgoArgon2id {
		algo = AlgoBcrypt
	}
	return &Hasher{algo: algo, bcryptCost: bcryptCost, argon: DefaultArgon}
}

// WithArgonParams overrides the argon2id parameters.
func (h *Hasher) WithArgonParams(p ArgonParams) *Hasher {
	h.argon = p
	return h
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	if h.algo == AlgoArgon2id {
		return h.hashArgon(plaintext)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches encoded. Malformed encodings
// verify as false.
func (h *Hasher) Verify(plaintext, encoded string) bool {
	if strings.HasPrefix(encoded, argonPrefix) {
		return verifyArgon(plaintext, encoded)
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
}

// encoded format: argon2id$m=<M>,t=<T>,p=<P>$<b64(salt)>$<b64(key)>
func (h *Hasher) hashArgon(plaintext string) (string, error) {
	p := h.argon
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2 salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("%sm=%d,t=%d,p=%d$%s$%s",
		argonPrefix, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon(plaintext, encoded string) bool {
	parts := strings.Split(encoded[len(argonPrefix):], "$")
	if len(parts) != 3 {
		return false
	}

	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[0], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(plaintext), salt, t, m, p, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
