// Package services contains server-side business logic: sign-up and sign-in,
// profile reads and edits, and owner-scoped bookmark management.
package services

import (
	"context"
	"strings"
	"time"
)

// PasswordHasher turns passwords into stored hashes and checks candidates.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// TokenSigner mints a session token for a user.
type TokenSigner interface {
	Sign(userID, email string) (string, error)
}

// ObjectStore receives bookmark exports.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
