// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/vidly/internal/platform/apperr"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

var (
	// ErrNotFound is returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == uniqueViolation
}

// IsNoRows reports whether err signals an empty result set.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Wrap inspects a database error and classifies it into an [apperr.AppError].
//
// Unique violations become CONFLICT (the message names the constraint-bearing
// resource), missing rows become NOT_FOUND, everything else is wrapped with the
// action name for the server log.
func Wrap(err error, action, resource string) error {
	if err == nil {
		return nil
	}

	if IsNoRows(err) {
		return apperr.NotFound(resource).WithCause(err)
	}

	if IsUniqueViolation(err) {
		return apperr.Conflict(resource + " with this username or email already exists").WithCause(err)
	}

	return fmt.Errorf("%s: %w", action, err)
}
