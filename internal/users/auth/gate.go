// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/taibuivan/vidly/internal/platform/apperr"
	"github.com/taibuivan/vidly/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/vidly/internal/platform/request"
	"github.com/taibuivan/vidly/internal/platform/respond"
	"github.com/taibuivan/vidly/internal/platform/sec"
)

// # Session Gate

// Gate returns middleware that admits only requests carrying a valid access token.
//
// The token comes from the accessToken cookie, else the Authorization header.
// The resolved account is attached to the request context for downstream handlers.
func (service *Service) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		account, err := service.Authenticate(ctx, requestutil.AccessToken(request))
		if err != nil {
			logGateRejection(request, err)
			respond.Error(writer, request, err)
			return
		}

		ctxutil.SetActorID(ctx, account.ID)
		next.ServeHTTP(writer, request.WithContext(WithAccount(ctx, account)))
	})
}

// logGateRejection records why a request was turned away. Clients always see 401.
func logGateRejection(request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	reason := "account_missing"
	switch {
	case errors.Is(err, ErrTokenMissing):
		reason = "token_missing"
	case errors.Is(err, sec.ErrTokenInvalid):
		reason = "token_invalid"
	case !apperr.HasCode(err, apperr.CodeUnauthorized):
		return
	}

	logger.Warn("session_gate_rejected", zap.String("reason", reason), zap.Error(err))
}
