// Package auth checks the shared admin credential sent with admin requests.
// Callers depend on CredentialChecker only, so the static key can be replaced
// by another mechanism without touching handlers or middleware.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
)

// CredentialChecker decides whether a presented admin key is valid.
type CredentialChecker interface {
	Check(key string) bool
}

// StaticKey accepts exactly one configured token.
type StaticKey struct {
	token []byte
}

// NewStaticKey creates a StaticKey checker. The token must not be empty.
func NewStaticKey(token string) (*StaticKey, error) {
	if token == "" {
		return nil, errors.New("admin token must not be empty")
	}
	return &StaticKey{token: []byte(token)}, nil
}

// Check compares key with the token byte for byte.
func (s *StaticKey) Check(key string) bool {
	if key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), s.token) == 1
}

// HashedKey accepts the token whose bcrypt hash is configured, so the
// plain token never has to be stored in the service environment.
type HashedKey struct {
	hash []byte
}

// NewHashedKey creates a HashedKey checker from a bcrypt hash.
func NewHashedKey(hash string) (*HashedKey, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid admin token hash: %w", err)
	}
	return &HashedKey{hash: []byte(hash)}, nil
}

func (h *HashedKey) Check(key string) bool {
	if key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(h.hash, []byte(key)) == nil
}

// FromConfig picks the checker for cfg; a configured hash wins over a plain token.
func FromConfig(cfg config.AdminConfig) (CredentialChecker, error) {
	if cfg.TokenHash != "" {
		return NewHashedKey(cfg.TokenHash)
	}
	return NewStaticKey(cfg.Token)
}
