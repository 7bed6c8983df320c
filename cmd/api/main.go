// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Vidly HTTP API server.
//
// # Startup Sequence
//
//  1. Load configuration from environment variables (.env best-effort).
//  2. Initialize the structured logger.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Build the security primitives, asset store and domain services.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taibuivan/vidly/internal/api"
	"github.com/taibuivan/vidly/internal/platform/config"
	"github.com/taibuivan/vidly/internal/platform/constants"
	"github.com/taibuivan/vidly/internal/platform/logger"
	"github.com/taibuivan/vidly/internal/platform/middleware"
	"github.com/taibuivan/vidly/internal/platform/migration"
	pgstore "github.com/taibuivan/vidly/internal/platform/postgres"
	redisstore "github.com/taibuivan/vidly/internal/platform/redis"
	"github.com/taibuivan/vidly/internal/platform/sec"
	"github.com/taibuivan/vidly/internal/platform/storage"
	"github.com/taibuivan/vidly/internal/users/account"
	"github.com/taibuivan/vidly/internal/users/auth"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failure: load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	log, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment() && cfg.Debug,
		File:        cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failure: build logger: %v\n", err)
		os.Exit(1)
	}
	log = log.With(zap.String("app", constants.AppName))
	defer func() { _ = log.Sync() }()

	log.Info("configuration_loaded",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.ServerPort),
		zap.Bool("debug", cfg.Debug),
	)

	// Root context for the process; cancelled on SIGINT/SIGTERM.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Startup deadline so misconfiguration fails fast rather than hanging.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, constants.StartupTimeout)
	defer startupCancel()

	// 3. PostgreSQL
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// 3b. Redis
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", zap.Error(cerr))
		}
	}()

	// 4. Migrations
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// 5. Security primitives
	hasher, err := sec.NewHasher(cfg.BcryptCost)
	must(log, err, "initialize password hasher")

	tokens, err := sec.NewTokenIssuer(sec.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenExpiry,
		Issuer:        constants.AuthIssuer,
	})
	must(log, err, "initialize token issuer")

	// 5b. Asset store
	s3Config := storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		Timeout:         cfg.UploadTimeout,
	}
	s3Client, err := storage.NewS3Client(startupCtx, s3Config)
	must(log, err, "initialize object storage")
	assets := storage.NewS3Store(s3Client, s3Config, log)

	must(log, os.MkdirAll(cfg.UploadDir, 0o750), "create upload staging directory")

	// 5c. Domain wiring
	accountRepository := auth.NewAccountRepository(pool)
	attemptRepository := auth.NewLoginAttemptRepository(rdb)

	authService := auth.NewService(accountRepository, attemptRepository, hasher, tokens, assets,
		auth.ThrottleConfig{MaxAttempts: cfg.LoginMaxAttempts, Lockout: cfg.LoginLockout},
		log.Named("auth"),
	)
	accountService := account.NewService(accountRepository, assets, log.Named("account"))

	cookies := auth.CookieConfig{
		Secure:     cfg.CookieSecure,
		AccessTTL:  cfg.AccessTokenExpiry,
		RefreshTTL: cfg.RefreshTokenExpiry,
	}

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(rootCtx)

	// 6. HTTP Server
	server := api.NewServer(cfg, log, limiter, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cookies, cfg.UploadDir),
		Account:   account.NewHandler(accountService, authService.Gate, cfg.UploadDir),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_failed", zap.Error(err))
	}

	log.Info("shutting_down_server", zap.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", zap.Error(err))
		return
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *zap.Logger, err error, step string) {
	if err != nil {
		log.Fatal("startup_failure", zap.String("step", step), zap.Error(err))
	}
}
