// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"net/http"

	"github.com/taibuivan/vidly/internal/platform/apperr"
	"github.com/taibuivan/vidly/internal/platform/ctxkey"
)

// WithAccount returns a context carrying the gate-resolved account.
func WithAccount(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAccount, account)
}

// AccountFrom returns the account attached by the gate, or nil.
func AccountFrom(ctx context.Context) *Account {
	account, _ := ctx.Value(ctxkey.KeyAccount).(*Account)
	return account
}

// RequiredAccount returns the gate-resolved account or an Unauthorized error.
func RequiredAccount(request *http.Request) (*Account, error) {
	account := AccountFrom(request.Context())
	if account == nil {
		return nil, apperr.Unauthorized(msgUnauthorized)
	}
	return account, nil
}
