// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware provides the cross-cutting HTTP processing chain.

It acts as a series of decorators around the standard http.Handler, injecting
traceability, safety, and security into every request lifecycle.

Standard Stack:

  - Trace: RequestID generation for log correlation.
  - Log: Structured access logging (zap).
  - Guard: Rate limiting, body size limits and CORS validation.
  - Safe: Panic recovery to prevent server crashes.

This package ensures that domain handlers can focus purely on business logic
without worrying about infrastructure-level concerns.
*/
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taibuivan/vidly/internal/platform/apperr"
	"github.com/taibuivan/vidly/internal/platform/constants"
	"github.com/taibuivan/vidly/internal/platform/ctxutil"
	"github.com/taibuivan/vidly/internal/platform/respond"
	"github.com/taibuivan/vidly/pkg/uuid"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request for log tracing.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Reuse the client-provided ID, otherwise mint a time-sortable one
			requestID := request.Header.Get(constants.HeaderXRequestID)
			if requestID == "" || len(requestID) > 128 {
				requestID = uuid.New()
			}

			// 2. Inject into context and response headers
			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			writer.Header().Set(constants.HeaderXRequestID, requestID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// Debug marks every request as served in debug mode when enabled.
func Debug(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithDebug(request.Context(), true)))
		})
	}
}

// # Activity Logging

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (recorder *statusRecorder) WriteHeader(code int) {
	if !recorder.written {
		recorder.status = code
		recorder.written = true
	}
	recorder.ResponseWriter.WriteHeader(code)
}

func (recorder *statusRecorder) Write(body []byte) (int, error) {
	recorder.written = true
	return recorder.ResponseWriter.Write(body)
}

// StructuredLogger logs every request status and latency.
// It also injects a request-specific logger into the context.
func StructuredLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			startTime := time.Now()

			// 1. Create a sub-logger for this specific request
			requestLogger := logger.With(
				zap.String("request_id", ctxutil.GetRequestID(request.Context())),
				zap.String("method", request.Method),
				zap.String("path", request.URL.Path),
				zap.String("ip", RealIP(request)),
			)

			// 2. Inject the logger and an empty actor slot for downstream use
			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			ctx = ctxutil.WithActorSlot(ctx)
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(wrappedWriter, request.WithContext(ctx))

			// 3. Final log entry after the request is finished
			level := zapcore.InfoLevel
			switch {
			case wrappedWriter.status >= 500:
				level = zapcore.ErrorLevel
			case wrappedWriter.status >= 400:
				level = zapcore.WarnLevel
			}

			fields := []zap.Field{
				zap.Int("status", wrappedWriter.status),
				zap.Duration("latency", time.Since(startTime)),
				zap.String("user_agent", request.UserAgent()),
			}
			if userID := ctxutil.GetActorID(ctx); userID != "" {
				fields = append(fields, zap.String("user_id", userID))
			}

			requestLogger.Log(level, "http_request_finished", fields...)
		})
	}
}

// # Body Limits

// BodyLimit caps JSON bodies at jsonLimit bytes and multipart bodies at multipartLimit.
func BodyLimit(jsonLimit, multipartLimit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Body != nil && request.Body != http.NoBody {
				limit := jsonLimit
				if strings.HasPrefix(request.Header.Get(constants.HeaderContentType), "multipart/") {
					limit = multipartLimit
				}
				if limit > 0 {
					request.Body = http.MaxBytesReader(writer, request.Body, limit)
				}
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// # Reliability & Safety

// PanicRecovery recovers from panics, logs the stack trace, and returns 500.
func PanicRecovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				stackTrace := make([]byte, 4096)
				length := runtime.Stack(stackTrace, false)

				ctxutil.GetLogger(request.Context()).Error("panic_recovered",
					zap.Any("error", recovered),
					zap.ByteString("stack", stackTrace[:length]),
				)

				respond.Error(writer, request, apperr.Internal(fmt.Errorf("panic: %v", recovered)))
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

/*
Timeout bounds every request with a context deadline.

Handlers are expected to honor the context. When one returns after the deadline
without having written anything, the client gets the 504 JSON envelope.
*/
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx, cancel := context.WithTimeout(request.Context(), limit)
			defer cancel()

			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
			next.ServeHTTP(wrappedWriter, request.WithContext(ctx))

			if !wrappedWriter.written && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				respond.Error(writer, request, apperr.Timeout().WithCause(ctx.Err()))
			}
		})
	}
}

// # Cross-Origin Resource Sharing

// CORS allows credentialed requests from the configured origin. "*" reflects any origin.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Check the Origin header
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Inject standard CORS headers if authorized
			if allowedOrigin == "*" || strings.EqualFold(origin, allowedOrigin) {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
				header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "300")
				header.Add("Vary", constants.HeaderOrigin)
			}

			// 3. Handle pre-flight requests (OPTIONS)
			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Middleware Helpers

// RealIP extracts client IP, respecting common proxy headers.
func RealIP(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
