package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/despi4/secure-todo-api/internal/api/metrics"
	"github.com/despi4/secure-todo-api/internal/core/domain"
)

// WindowCounter counts hits per key in fixed windows.
type WindowCounter interface {
	// Incr records one hit and returns the count in the current window and
	// the time until that window resets.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	// Prefix namespaces the counter keys, e.g. "rl:auth".
	Prefix string
	// Max is the number of requests allowed per window.
	Max int
	Window time.Duration
	Store  WindowCounter
	// Metrics may be nil.
	Metrics *metrics.Metrics
	Log     zerolog.Logger
}

// RateLimit allows at most cfg.Max requests per client address in each fixed
// window. Rejected requests never reach the handler. If the counter store is
// unavailable the request is let through and a warning is logged.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":" + ip

			count, ttl, err := cfg.Store.Incr(c.Request().Context(), key, cfg.Window)
			if err != nil {
				cfg.Log.Warn().Err(err).Str("key", key).Msg("rate limit store unavailable; allowing request")
				return next(c)
			}

			remaining := int64(cfg.Max) - count
			if remaining < 0 {
				remaining = 0
			}
			reset := int(math.Ceil(ttl.Seconds()))

			h := c.Response().Header()
			h.Set("RateLimit-Limit", strconv.Itoa(cfg.Max))
			h.Set("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			h.Set("RateLimit-Reset", strconv.Itoa(reset))

			if count > int64(cfg.Max) {
				h.Set("Retry-After", strconv.Itoa(reset))
				cfg.Metrics.RateLimited()
				cfg.Log.Warn().
					Str("remote_ip", ip).
					Str("path", c.Path()).
					Int64("count", count).
					Msg("rate limit exceeded")
				return domain.ErrTooManyRequests
			}
			return next(c)
		}
	}
}
