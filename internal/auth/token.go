// Package auth issues and checks the bearer token guarding the HTTP API.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenPrefix marks generated tokens.
	TokenPrefix = "nn_" // #nosec G101 -- prefix, not a credential

	// TokenLength is the random part of a generated token, in bytes.
	TokenLength = 32

	bcryptCost = 12

	// maxAccepted bounds the verified-token cache.
	maxAccepted = 64
)

// IsHash reports whether s looks like a bcrypt hash.
func IsHash(s string) bool {
	return strings.HasPrefix(s, "$2")
}

// GenerateToken returns a fresh random token.
func GenerateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(b), nil
}

// HashToken returns the bcrypt hash to store in place of token.
func HashToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("hash token: empty token")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}

// Verifier checks presented tokens against the configured one, which is
// either the secret itself or its bcrypt hash. Tokens that matched a hash
// are remembered by digest so bcrypt runs once per distinct token.
type Verifier struct {
	want   []byte
	hashed bool

	mu       sync.Mutex
	accepted map[[sha256.Size]byte]struct{}
}

// NewVerifier returns a Verifier for configured.
func NewVerifier(configured string) *Verifier {
	return &Verifier{
		want:     []byte(configured),
		hashed:   IsHash(configured),
		accepted: map[[sha256.Size]byte]struct{}{},
	}
}

// Verify reports whether token is the configured one.
func (v *Verifier) Verify(token string) bool {
	if token == "" || len(v.want) == 0 {
		return false
	}
	if !v.hashed {
		return subtle.ConstantTimeCompare([]byte(token), v.want) == 1
	}

	sum := sha256.Sum256([]byte(token))
	v.mu.Lock()
	_, ok := v.accepted[sum]
	v.mu.Unlock()
	if ok {
		return true
	}
	if bcrypt.CompareHashAndPassword(v.want, []byte(token)) != nil {
		return false
	}
	v.mu.Lock()
	if len(v.accepted) >= maxAccepted {
		clear(v.accepted)
	}
	v.accepted[sum] = struct{}{}
	v.mu.Unlock()
	return true
}
