package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/despi4/secure-todo-api/internal/api/middleware"
	"github.com/despi4/secure-todo-api/internal/core/domain"
	"github.com/despi4/secure-todo-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, in ports.LoginInput) (*ports.Session, error)
	currentFn  func(ctx context.Context, identity domain.Identity) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.Session, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	return s.currentFn(ctx, identity)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

var testCookies = CookieConfig{TTL: 30 * time.Minute}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Email != "alice@example.com" || in.Password != "long-enough" {
				t.Fatalf("unexpected args: %+v", in)
			}
			return &domain.User{ID: "u1", Email: in.Email, Role: domain.RoleUser, PasswordHash: "digest"}, nil
		},
	}
	handler := NewAuthHandler(stub, testCookies, nil)

	c, rec := jsonContext(e, http.MethodPost, "/auth/register", `{"email":" alice@example.com ","password":"long-enough"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user := resp["user"]
	if user["id"] != "u1" || user["email"] != "alice@example.com" || user["role"] != "user" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if len(user) != 3 {
		t.Fatalf("user summary must only carry id, email and role: %+v", user)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, testCookies, nil)

	c, _ := jsonContext(e, http.MethodPost, "/auth/register", `{"email":"bob@example.com","password":"long-enough"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, testCookies, nil)

	for _, body := range []string{"not-json", `{"email":"bob@example.com","password":"short"}`, `{"password":"long-enough"}`} {
		c, _ := jsonContext(e, http.MethodPost, "/auth/register", body)
		var ve *domain.ValidationError
		if err := handler.Register(c); !errors.As(err, &ve) {
			t.Fatalf("body %q: expected ValidationError, got %v", body, err)
		}
	}
}

func TestAuthHandler_Login_SetsCookie(t *testing.T) {
	e := newEcho()
	exp := time.Date(2026, 6, 1, 12, 30, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.Session, error) {
			if in.Email != "alice@example.com" || in.Password != "secret" {
				t.Fatalf("unexpected args: %+v", in)
			}
			return &ports.Session{
				Token:     "token123",
				ExpiresAt: exp,
				User:      &domain.User{ID: "u1", Email: in.Email, Role: domain.RoleAdmin},
			}, nil
		},
	}
	handler := NewAuthHandler(stub, CookieConfig{Secure: true, TTL: 30 * time.Minute}, nil)

	c, rec := jsonContext(e, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "token123") {
		t.Fatalf("token must travel in the cookie only")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != middleware.SessionCookieName || ck.Value != "token123" {
		t.Fatalf("unexpected cookie: %+v", ck)
	}
	if !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode || ck.MaxAge != 1800 || ck.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", ck)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, testCookies, nil)

	c, rec := jsonContext(e, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"bad"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set a cookie")
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*ports.Session, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, testCookies, nil)

	c, _ := jsonContext(e, http.MethodPost, "/auth/login", "{")
	var ve *domain.ValidationError
	if err := handler.Login(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, testCookies, nil)

	c, rec := jsonContext(e, http.MethodPost, "/auth/logout", "")
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
	ck := rec.Result().Cookies()[0]
	if ck.Name != middleware.SessionCookieName || ck.Value != "" || ck.MaxAge >= 0 {
		t.Fatalf("expected an expired session cookie, got %+v", ck)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		currentFn: func(ctx context.Context, identity domain.Identity) (*domain.User, error) {
			if identity.Subject != "u1" {
				return nil, domain.ErrUnauthenticated
			}
			return &domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleUser}, nil
		},
	}
	handler := NewAuthHandler(stub, testCookies, nil)

	c, rec := jsonContext(e, http.MethodGet, "/auth/me", "")
	middleware.SetIdentity(c, domain.Identity{Subject: "u1", Role: domain.RoleUser})
	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"id":"u1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = jsonContext(e, http.MethodGet, "/auth/me", "")
	if err := handler.Me(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated without identity, got %v", err)
	}
}
