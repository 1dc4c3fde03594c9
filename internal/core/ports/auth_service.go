package ports

import (
	"context"
	"time"

	"github.com/despi4/secure-todo-api/internal/core/domain"
)

// RegisterInput carries validated registration data.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput carries validated login data.
type LoginInput struct {
	Email    string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService covers account registration, login and session resolution.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	// CurrentUser re-reads the account behind identity. It returns
	// domain.ErrUnauthenticated when the account no longer exists.
	CurrentUser(ctx context.Context, identity domain.Identity) (*domain.User, error)
}
