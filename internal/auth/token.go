package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// tokenBytes is the entropy of a raw token before encoding.
const tokenBytes = 32

var ErrTokenNotFound = errors.New("auth token not found")

// Manager mints opaque bearer tokens and derives the digest that is stored in
// place of the raw value.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Generate returns a new random token with no embedded structure.
func (m *Manager) Generate() (string, error) {
	b := make([]byte, tokenBytes)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Deterministic HMAC digest (server-side pepper = TOKEN_SECRET).
// Store this in the token table, never the raw token.
func (m *Manager) Hash(raw string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}
