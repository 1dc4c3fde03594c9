package handler

import (
	"net/http"
	"time"

	"github.com/despi4/secure-todo-api/internal/api/middleware"
)

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	// Secure marks the cookie HTTPS-only. Enable whenever serving over TLS.
	Secure bool
	// TTL is the cookie lifetime; it matches the token lifetime.
	TTL time.Duration
}

func (cc CookieConfig) session(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cc.TTL / time.Second),
		Expires:  expiresAt.UTC(),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (cc CookieConfig) cleared() *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
