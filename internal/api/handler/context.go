package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/despi4/secure-todo-api/internal/api/middleware"
	"github.com/despi4/secure-todo-api/internal/core/domain"
)

// currentIdentity returns the identity attached by the Session middleware.
// A route wired without that middleware fails closed.
func currentIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return identity, nil
}
