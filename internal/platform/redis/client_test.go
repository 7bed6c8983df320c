// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	redisstore "github.com/taibuivan/vidly/internal/platform/redis"
)

/*
TestNewClient_ConnectsAndPings verifies the startup handshake against miniredis.
*/
func TestNewClient_ConnectsAndPings(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := redisstore.NewClient(context.Background(), "redis://"+server.Addr()+"/0", zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, redisstore.Ping(context.Background(), client))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := redisstore.NewClient(context.Background(), "not-a-url", zap.NewNop())
	assert.Error(t, err)
}
