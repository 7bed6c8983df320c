// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/vidly/internal/platform/constants"
)

// # Login Attempt Repository

// RedisLoginAttemptRepository implements [LoginAttemptRepository] with expiring counters.
type RedisLoginAttemptRepository struct {
	client redis.Cmdable
}

// NewLoginAttemptRepository creates a Redis-backed [LoginAttemptRepository].
func NewLoginAttemptRepository(client redis.Cmdable) *RedisLoginAttemptRepository {
	return &RedisLoginAttemptRepository{client: client}
}

/*
Failures returns the failed-attempt count for identifier, 0 when no window is open.

Parameters:
  - ctx: context.Context
  - identifier: string (normalized username or email)

Returns:
  - int: Current failures
  - error: Connectivity errors
*/
func (repository *RedisLoginAttemptRepository) Failures(ctx context.Context, identifier string) (int, error) {
	count, err := repository.client.Get(ctx, loginAttemptKey(identifier)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis_login_attempts_get_failed: %w", err)
	}
	return count, nil
}

/*
RecordFailure increments the counter and opens the window on the first failure.

Description: INCR and EXPIRE NX run in one MULTI/EXEC, so a counter never
exists without a TTL and a later failure cannot extend an open window.

Parameters:
  - ctx: context.Context
  - identifier: string
  - window: time.Duration (lockout length)

Returns:
  - int: Failures after the increment
  - error: Connectivity errors
*/
func (repository *RedisLoginAttemptRepository) RecordFailure(ctx context.Context, identifier string, window time.Duration) (int, error) {
	key := loginAttemptKey(identifier)

	var incr *redis.IntCmd
	_, err := repository.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis_login_attempts_record_failed: %w", err)
	}

	return int(incr.Val()), nil
}

/*
Reset deletes the counter for identifier.
*/
func (repository *RedisLoginAttemptRepository) Reset(ctx context.Context, identifier string) error {
	if err := repository.client.Del(ctx, loginAttemptKey(identifier)).Err(); err != nil {
		return fmt.Errorf("redis_login_attempts_delete_failed: %w", err)
	}
	return nil
}

// RetryAfter returns how long until the window for identifier closes.
func (repository *RedisLoginAttemptRepository) RetryAfter(ctx context.Context, identifier string) (time.Duration, error) {
	ttl, err := repository.client.TTL(ctx, loginAttemptKey(identifier)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_login_attempts_ttl_failed: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func loginAttemptKey(identifier string) string {
	return constants.RedisPrefixLoginAttempts + identifier
}
