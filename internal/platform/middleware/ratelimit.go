// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/vidly/internal/platform/apperr"
	"github.com/taibuivan/vidly/internal/platform/constants"
	"github.com/taibuivan/vidly/internal/platform/respond"
)

// # Rate Limiting

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP using a token bucket per IP.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*rateLimitClient
}

// NewRateLimiter returns a limiter allowing rps requests per second with burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*rateLimitClient),
	}
}

// Run evicts idle clients until ctx is cancelled.
func (limiter *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.evict(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (limiter *RateLimiter) evict(now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for ip, client := range limiter.clients {
		if now.Sub(client.lastSeen) > constants.RateLimitClientTTL {
			delete(limiter.clients, ip)
		}
	}
}

// allow consumes one token for ip and reports the wait before the next token.
func (limiter *RateLimiter) allow(ip string) (bool, time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	client, found := limiter.clients[ip]
	if !found {
		client = &rateLimitClient{limiter: rate.NewLimiter(limiter.rps, limiter.burst)}
		limiter.clients[ip] = client
	}
	client.lastSeen = time.Now()

	reservation := client.limiter.Reserve()
	if !reservation.OK() {
		// The bucket can never hold a token, e.g. burst 0.
		return false, rate.InfDuration
	}
	delay := reservation.Delay()
	if delay == 0 {
		return true, 0
	}
	reservation.Cancel()
	return false, delay
}

// Middleware rejects requests over the limit with 429.
func (limiter *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		allowed, wait := limiter.allow(RealIP(request))
		if !allowed {
			respond.Error(writer, request, apperr.RateLimited(retryAfterSeconds(wait)))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// retryAfterSeconds converts a limiter delay into a Retry-After value within
// [1, RateLimitMaxRetryAfter].
func retryAfterSeconds(wait time.Duration) int {
	if wait <= 0 {
		return 1
	}
	if wait > constants.RateLimitMaxRetryAfter {
		wait = constants.RateLimitMaxRetryAfter
	}
	return int(math.Ceil(wait.Seconds()))
}
