package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/despi4/secure-todo-api/internal/api/metrics"
	"github.com/despi4/secure-todo-api/internal/core/domain"
	"github.com/despi4/secure-todo-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieConfig
	metrics     *metrics.Metrics
}

// NewAuthHandler wires the auth routes. m may be nil.
func NewAuthHandler(authService ports.AuthService, cookies CookieConfig, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, metrics: m}
}

// Register creates a new user account. No session is started.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Email and password"
// @Success      201   {object}  userEnvelope
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		h.metrics.AuthAttempt("register", "invalid")
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.metrics.AuthAttempt("register", authResult(err))
		return err
	}

	h.metrics.AuthAttempt("register", "success")
	return c.JSON(http.StatusCreated, userEnvelope{User: toUserResponse(user)})
}

// Login verifies credentials and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		h.metrics.AuthAttempt("login", "invalid")
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.metrics.AuthAttempt("login", authResult(err))
		return err
	}

	c.SetCookie(h.cookies.session(session.Token, session.ExpiresAt))
	h.metrics.AuthAttempt("login", "success")
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(session.User)})
}

// Logout clears the session cookie. The token itself stays valid until it expires.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  okResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.cookies.cleared())
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// Me returns the account behind the current session.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

func authResult(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "denied"
	default:
		return "error"
	}
}
