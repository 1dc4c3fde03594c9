package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/despi4/secure-todo-api/internal/api/handler"
	"github.com/despi4/secure-todo-api/internal/api/metrics"
	"github.com/despi4/secure-todo-api/internal/api/middleware"
	"github.com/despi4/secure-todo-api/internal/core/domain"
	"github.com/despi4/secure-todo-api/internal/core/ports"
)

const (
	bodyLimit       = "32K"
	rateLimitPrefix = "rl:auth"
	hstsMaxAge      = 180 * 24 * 60 * 60
)

// Deps carries everything the HTTP layer needs. Build it once in main.
type Deps struct {
	Auth   ports.AuthService
	Tasks  ports.TaskService
	Tokens ports.TokenCodec

	// RateLimitStore backs the shared register/login limiter.
	RateLimitStore  middleware.WindowCounter
	RateLimitMax    int
	RateLimitWindow time.Duration

	Cookies    handler.CookieConfig
	CORSOrigin string
	TrustProxy bool

	// HealthChecks are pinged by GET /health/ready.
	HealthChecks map[string]handler.PingFunc

	// Registry receives the HTTP and domain metrics. A fresh one is used when nil.
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	if d.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := d.Metrics
	if m == nil {
		m = metrics.New(reg)
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		Skipper:               isSwaggerPath,
		XSSProtection:         "0",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            hstsMaxAgeFor(d.Cookies.Secure),
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "no-referrer",
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{d.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "todo",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || isSwaggerPath(c)
		},
	}))

	// --- Dependencies ---
	session := middleware.Session(d.Tokens)
	authLimiter := middleware.RateLimit(middleware.RateLimitConfig{
		Prefix:  rateLimitPrefix,
		Max:     d.RateLimitMax,
		Window:  d.RateLimitWindow,
		Store:   d.RateLimitStore,
		Metrics: m,
		Log:     d.Log,
	})
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookies, m)
	taskHandler := handler.NewTaskHandler(d.Tasks, m)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, authLimiter)
	auth.POST("/login", authHandler.Login, authLimiter)
	auth.POST("/logout", authHandler.Logout, session)
	auth.GET("/me", authHandler.Me, session)

	// --- Task routes (single read is public) ---
	tasks := e.Group("/tasks")
	tasks.POST("", taskHandler.Create, session)
	tasks.GET("", taskHandler.List, session)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PATCH("/:id", taskHandler.Patch, session)
	tasks.DELETE("/:id", taskHandler.Delete, session)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}),
		session, middleware.RequireRole(domain.RoleAdmin))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func isSwaggerPath(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/swagger")
}

func hstsMaxAgeFor(secure bool) int {
	if secure {
		return hstsMaxAge
	}
	return 0
}
