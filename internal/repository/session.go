package repository

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/ticket-counter/internal/model"
)

// SessionStore maps opaque bearer tokens to sessions. Implementations must
// preserve the same observable semantics regardless of backend: no expiry,
// last-writer-wins under concurrent writes, and tolerance for the legacy
// storage shape where a token's value was a bare user-id string.
type SessionStore interface {
	// Create derives a stable user id from the email, generates a fresh
	// token and persists the session. Empty email fails with ErrValidation.
	Create(ctx context.Context, email string) (token string, s model.Session, err error)
	// Resolve returns the session for a token, or (nil, nil) when the token
	// is unknown. Absence is not an error; callers decide whether anonymous
	// access is permitted.
	Resolve(ctx context.Context, token string) (*model.Session, error)
	// Revoke removes a session. Removing an absent token is a no-op.
	Revoke(ctx context.Context, token string) error
}

// DeriveUserID produces the stable identifier for an email: the SHA-256 of
// the lower-cased, trimmed email, hex-encoded and truncated to 16 characters.
// The derivation is one-way; collision risk at 64 bits is negligible for the
// expected user count.
func DeriveUserID(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])[:16]
}

// normalizeEmail trims and lower-cases an email, rejecting empty input.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	return email, nil
}

// newSessionToken returns a hex-encoded token built from 32 bytes of
// cryptographically secure random data (256 bits of entropy). Tokens are
// opaque to clients and serve as the session table's primary key.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// newSession builds the session value for an already-normalized email.
func newSession(email string) model.Session {
	return model.Session{
		UserID:    DeriveUserID(email),
		Email:     email,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
