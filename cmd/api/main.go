//go:generate swag init -g cmd/api/main.go -d ../.. -o ../../docs

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	_ "github.com/despi4/secure-todo-api/docs"
	"github.com/despi4/secure-todo-api/internal/api"
	"github.com/despi4/secure-todo-api/internal/api/handler"
	"github.com/despi4/secure-todo-api/internal/api/metrics"
	"github.com/despi4/secure-todo-api/internal/api/middleware"
	"github.com/despi4/secure-todo-api/internal/core/service"
	"github.com/despi4/secure-todo-api/internal/infrastructure/config"
	mongodb "github.com/despi4/secure-todo-api/internal/infrastructure/db/mongo"
	redisdb "github.com/despi4/secure-todo-api/internal/infrastructure/db/redis"
	"github.com/despi4/secure-todo-api/internal/infrastructure/queue"
	"github.com/despi4/secure-todo-api/internal/infrastructure/ratelimit"
	"github.com/despi4/secure-todo-api/internal/infrastructure/security"
	"github.com/despi4/secure-todo-api/pkg/logger"
)

const (
	serviceName     = "secure-todo-api"
	shutdownTimeout = 10 * time.Second
)

// @title        Secure Todo API
// @version      1.0
// @description  Multi-user task tracking with cookie sessions and owner/admin authorization.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: serviceName})
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server exited cleanly")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	checks := map[string]handler.PingFunc{"mongodb": mongodb.Pinger(client)}

	var limiterStore middleware.WindowCounter
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		limiterStore = redisdb.NewWindowStore(rdb)
		checks["redis"] = redisdb.Pinger(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set; auth rate limiting is per process")
		limiterStore = ratelimit.NewMemoryStore()
	}

	// --- Security ---
	hasher, err := security.NewBcryptHasher(cfg.Session.BcryptCost)
	if err != nil {
		return err
	}
	codec, err := security.NewJWTCodec(cfg.JWTSecret, cfg.Session.TTL)
	if err != nil {
		return err
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// --- Services ---
	audit := service.NewAuditService(mongodb.NewEventRepository(db), log)
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, audit, m, log)
	dispatcher.Start()

	authService := service.NewAuthService(mongodb.NewUserRepository(db), hasher, codec, log)
	taskService := service.NewTaskService(mongodb.NewTaskRepository(db), dispatcher, log)

	// --- HTTP ---
	router := api.NewRouter(api.Deps{
		Auth:            authService,
		Tasks:           taskService,
		Tokens:          codec,
		RateLimitStore:  limiterStore,
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: cfg.RateLimit.Window,
		Cookies:         handler.CookieConfig{Secure: cfg.SecureCookies(), TTL: codec.TTL()},
		CORSOrigin:      cfg.CORSOrigin,
		TrustProxy:      cfg.TrustProxy,
		HealthChecks:    checks,
		Registry:        reg,
		Metrics:         m,
		Log:             log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	// Requests are drained, so no new audit events can arrive.
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("audit dispatcher did not drain in time")
	}
	return nil
}
