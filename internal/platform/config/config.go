// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct. A local '.env' file is loaded first (best-effort) with 'joho/godotenv'
so development setups work without exporting variables by hand.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components via constructors.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the Vidly API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Relational Database (PostgreSQL)
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis), used for login throttling
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Token signing. Access and refresh secrets must differ.
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY"  envDefault:"15m"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"240h"`

	// Password hashing work factor
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// Cookies
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`

	// Login throttling
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginLockout     time.Duration `env:"LOGIN_LOCKOUT"      envDefault:"15m"`

	// Per-IP rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Request body limits (bytes)
	JSONBodyLimit      int64 `env:"JSON_BODY_LIMIT"      envDefault:"16384"`
	MultipartBodyLimit int64 `env:"MULTIPART_BODY_LIMIT" envDefault:"10485760"`

	// Temporary staging of uploaded files before they are forwarded to object storage
	UploadDir     string        `env:"UPLOAD_DIR"     envDefault:"./public/temp"`
	UploadTimeout time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"30s"`

	// Object Storage (S3-compatible)
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION"   envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`

	// Cross-Origin Resource Sharing. Empty means same-origin only.
	CORSOrigin string `env:"CORS_ORIGIN"`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config].
func Load() (*Config, error) {

	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	return Parse()
}

// Parse maps the current process environment onto a validated [Config].
func Parse() (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces cross-field invariants that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if c.AccessTokenExpiry <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRY must be positive"))
	}
	if c.RefreshTokenExpiry <= c.AccessTokenExpiry {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRY must be longer than ACCESS_TOKEN_EXPIRY"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [4, 31], got %d", c.BcryptCost))
	}
	if c.LoginMaxAttempts <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must be positive"))
	}
	if c.UploadTimeout <= 0 {
		errs = append(errs, errors.New("UPLOAD_TIMEOUT must be positive"))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be positive, got %g", c.RateLimitRPS))
	}
	if c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ExposeErrorDetails reports whether 5xx envelopes may carry the internal
// cause. Production never does, whatever DEBUG says.
func (c *Config) ExposeErrorDetails() bool {
	return c.Debug && !c.IsProduction()
}

// AllowedOrigin returns the single origin allowed to make credentialed requests.
func (c *Config) AllowedOrigin() string {
	return c.CORSOrigin
}
