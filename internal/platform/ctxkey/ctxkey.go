// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// # Safety
//
// An unexported key type prevents collisions with third-party packages that
// might also use context for storage.
package ctxkey

// key is an unexported type used for context keys to ensure type safety.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyAccount is the context key for the account resolved by the session gate.
	KeyAccount key = "account"

	// KeyLogger is the context key for the per-request [*zap.Logger].
	KeyLogger key = "logger"

	// KeyDebug marks requests served in debug mode.
	KeyDebug key = "debug"

	// KeyActor holds the mutable actor slot filled in by the session gate.
	KeyActor key = "actor"
)
