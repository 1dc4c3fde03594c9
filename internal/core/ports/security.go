package ports

import (
	"time"

	"github.com/despi4/secure-todo-api/internal/core/domain"
)

// PasswordHasher performs one-way, salted, adaptive password hashing.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never fails on bad input; a mismatch or a corrupt digest is false.
	Verify(plaintext, digest string) bool
}

// TokenCodec issues and verifies signed, time-limited session tokens.
type TokenCodec interface {
	Issue(identity domain.Identity) (token string, expiresAt time.Time, err error)
	// Verify returns domain.ErrInvalidToken for any malformed, tampered or
	// expired token without saying which.
	Verify(token string) (domain.Identity, error)
}
