package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/despi4/secure-todo-api/internal/core/domain"
	"github.com/despi4/secure-todo-api/internal/core/ports"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "access_token"

const identityKey = "identity"

// Session resolves the caller from the session cookie or, failing that, an
// "Authorization: Bearer" header. Every failure is domain.ErrUnauthenticated so
// callers cannot tell a missing token from an expired or forged one.
func Session(codec ports.TokenCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c)
			if token == "" {
				return domain.ErrUnauthenticated
			}

			identity, err := codec.Verify(token)
			if err != nil {
				return domain.ErrUnauthenticated
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SetIdentity attaches identity to the request context.
func SetIdentity(c echo.Context, identity domain.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the identity attached by Session, if any.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	identity, ok := c.Get(identityKey).(domain.Identity)
	return identity, ok
}
