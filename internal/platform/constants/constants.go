// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Security: cookie names and login throttle keys.
  - Transport: header names and health-check field identifiers.
*/
package constants

import "time"

// # Metadata

const AppName = "vidly-api"

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Multipart uploads of avatar and cover images must fit inside this window.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 45 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// StartupTimeout bounds dependency connection at boot.
	StartupTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// RateLimitMaxRetryAfter caps the Retry-After hint of a rejected request.
	RateLimitMaxRetryAfter = 1 * time.Hour
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "vidly.app"

	// AccessTokenCookieName carries the access token.
	AccessTokenCookieName = "accessToken"

	// RefreshTokenCookieName carries the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// CookiePath scopes both token cookies.
	CookiePath = "/"

	// BearerPrefix is the Authorization scheme accepted by the session gate.
	BearerPrefix = "Bearer "
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderContentType   = "Content-Type"
	HeaderRetryAfter    = "Retry-After"
)

// # JSON Field Identifiers

const (
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Redis Prefixes

const (
	RedisPrefixLoginAttempts = "auth:login_attempts:"
)

// # Object Storage Prefixes

const (
	StoragePrefixAvatar = "avatars"
	StoragePrefixCover  = "covers"
)
