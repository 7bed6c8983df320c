// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Every response (success or error) follows the same JSON envelope:
//
//	{"status": 200, "data": {...}, "message": "...", "success": true}
//	{"status": 401, "message": "...", "success": false, "errors": [...]}
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/taibuivan/vidly/internal/platform/apperr"
	"github.com/taibuivan/vidly/internal/platform/constants"
	"github.com/taibuivan/vidly/internal/platform/ctxutil"
)

// SuccessEnvelope is the JSON envelope for successful responses.
type SuccessEnvelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Success bool                `json:"success"`
	Errors  []apperr.FieldError `json:"errors"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set(constants.HeaderContentType, "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// Success writes the success envelope with an explicit status code.
func Success(writer http.ResponseWriter, statusCode int, data any, message string) {
	JSON(writer, statusCode, SuccessEnvelope{
		Status:  statusCode,
		Data:    data,
		Message: message,
		Success: statusCode < http.StatusBadRequest,
	})
}

// OK writes a 200 OK success envelope.
func OK(writer http.ResponseWriter, data any, message string) {
	Success(writer, http.StatusOK, data, message)
}

// Created writes a 201 Created success envelope.
func Created(writer http.ResponseWriter, data any, message string) {
	Success(writer, http.StatusCreated, data, message)
}

// Error converts any Go error into the standardized JSON error envelope.
//
// Non-[apperr.AppError] values become 500 INTERNAL_ERROR. The cause of a 5xx is
// logged and only echoed to the client when the request runs in debug mode.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	appError := apperr.As(err)
	switch {
	case appError != nil:
	case errors.Is(err, context.DeadlineExceeded):
		appError = apperr.Timeout().WithCause(err)
	default:
		logger.Error("unhandled_error", zap.Error(err))
		appError = apperr.Internal(err)
	}

	errorsList := appError.Details
	if errorsList == nil {
		errorsList = []apperr.FieldError{}
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("api_server_error",
			zap.String("code", appError.Code),
			zap.NamedError("cause", appError.Cause),
		)
		if ctxutil.IsDebug(request.Context()) && appError.Cause != nil {
			errorsList = append(errorsList, apperr.FieldError{Field: "cause", Message: appError.Cause.Error()})
		}
	}

	if appError.RetryAfter > 0 {
		writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(appError.RetryAfter))
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Status:  appError.HTTPStatus,
		Message: appError.Message,
		Success: false,
		Errors:  errorsList,
	})
}
