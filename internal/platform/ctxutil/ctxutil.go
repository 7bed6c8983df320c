// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"

	"go.uber.org/zap"

	"github.com/taibuivan/vidly/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global zap logger.
func GetLogger(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*zap.Logger)
	if !ok || logger == nil {
		return zap.L()
	}
	return logger
}

// # Debug Mode

// WithDebug marks the context as served in debug mode.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, ctxkey.KeyDebug, enabled)
}

// IsDebug reports whether the request is served in debug mode.
func IsDebug(ctx context.Context) bool {
	enabled, _ := ctx.Value(ctxkey.KeyDebug).(bool)
	return enabled
}

// # Actor

// actor is a per-request slot written by the session gate and read by the access
// logger after the handler chain returns.
type actor struct {
	userID string
}

// WithActorSlot returns a context carrying an empty actor slot.
func WithActorSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxkey.KeyActor, &actor{})
}

// SetActorID records the authenticated account id in the actor slot, if present.
func SetActorID(ctx context.Context, userID string) {
	if slot, ok := ctx.Value(ctxkey.KeyActor).(*actor); ok {
		slot.userID = userID
	}
}

// GetActorID returns the authenticated account id, or "" for anonymous requests.
func GetActorID(ctx context.Context) string {
	if slot, ok := ctx.Value(ctxkey.KeyActor).(*actor); ok {
		return slot.userID
	}
	return ""
}
