// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidly/internal/users/auth"
)

func newRedisAttempts(t *testing.T) (*auth.RedisLoginAttemptRepository, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewLoginAttemptRepository(client), server
}

/*
TestRedisAttempts_WindowLifecycle records failures, checks the TTL and lets the window expire.
*/
func TestRedisAttempts_WindowLifecycle(t *testing.T) {
	repository, server := newRedisAttempts(t)
	ctx := context.Background()

	failures, err := repository.Failures(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, failures)

	count, err := repository.RecordFailure(ctx, "alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repository.RecordFailure(ctx, "alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.True(t, server.Exists("auth:login_attempts:alice"))
	assert.Equal(t, time.Minute, server.TTL("auth:login_attempts:alice"))

	wait, err := repository.RetryAfter(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, wait)

	server.FastForward(2 * time.Minute)

	failures, err = repository.Failures(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, failures)
}

func TestRedisAttempts_Reset(t *testing.T) {
	repository, _ := newRedisAttempts(t)
	ctx := context.Background()

	_, err := repository.RecordFailure(ctx, "bob@x.com", time.Minute)
	require.NoError(t, err)
	require.NoError(t, repository.Reset(ctx, "bob@x.com"))

	failures, err := repository.Failures(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.Zero(t, failures)

	wait, err := repository.RetryAfter(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.Zero(t, wait)
}

func TestRedisAttempts_ServerDown(t *testing.T) {
	repository, server := newRedisAttempts(t)
	server.Close()

	_, err := repository.Failures(context.Background(), "alice")
	assert.Error(t, err)

	_, err = repository.RecordFailure(context.Background(), "alice", time.Minute)
	assert.Error(t, err)
}

/*
TestRedisAttempts_WindowNotExtended keeps the TTL from the first failure; later
failures inside the window do not push it back.
*/
func TestRedisAttempts_WindowNotExtended(t *testing.T) {
	repository, server := newRedisAttempts(t)
	ctx := context.Background()

	_, err := repository.RecordFailure(ctx, "alice", time.Minute)
	require.NoError(t, err)

	server.FastForward(40 * time.Second)

	count, err := repository.RecordFailure(ctx, "alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 20*time.Second, server.TTL("auth:login_attempts:alice"))
}

/*
TestRedisAttempts_CounterWithoutTTLHeals gives a counter left without expiry a
window on the next failure, so an identifier is never locked out forever.
*/
func TestRedisAttempts_CounterWithoutTTLHeals(t *testing.T) {
	repository, server := newRedisAttempts(t)
	ctx := context.Background()

	require.NoError(t, server.Set("auth:login_attempts:alice", "7"))
	assert.Zero(t, server.TTL("auth:login_attempts:alice"))

	count, err := repository.RecordFailure(ctx, "alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 8, count)
	assert.Equal(t, time.Minute, server.TTL("auth:login_attempts:alice"))

	server.FastForward(2 * time.Minute)

	failures, err := repository.Failures(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, failures)
}
