// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used in the service layer. It ensures that business logic
// only operates on semantically valid data.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/taibuivan/vidly/internal/platform/apperr"
)

// PasswordMinLen and PasswordMaxBytes bound accepted passwords. bcrypt ignores
// input beyond 72 bytes, so longer values are refused up front.
const (
	PasswordMinLen   = 8
	PasswordMaxBytes = 72
)

var (
	// usernameRegex allows lowercase letters, digits, dots, underscores and hyphens.
	usernameRegex = regexp.MustCompile(`^[a-z0-9._-]+$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	}
	return v
}

// Email fails if the value is not a bare RFC 5322 address.
func (v *Validator) Email(field, value string) *Validator {
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// Username fails unless the value is 3-30 characters of [a-z0-9._-].
func (v *Validator) Username(field, value string) *Validator {
	count := utf8.RuneCountInString(value)
	if count < 3 || count > 30 || !usernameRegex.MatchString(value) {
		v.add(field, "Must be 3-30 characters of lowercase letters, digits, '.', '_' or '-'")
	}
	return v
}

// Password fails unless the value has at least [PasswordMinLen] characters,
// one letter and one digit, and fits in [PasswordMaxBytes].
func (v *Validator) Password(field, value string) *Validator {
	var hasLetter, hasDigit bool
	for _, r := range value {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case utf8.RuneCountInString(value) < PasswordMinLen:
		v.add(field, fmt.Sprintf("Password must be at least %d characters", PasswordMinLen))
	case len(value) > PasswordMaxBytes:
		v.add(field, fmt.Sprintf("Password must be at most %d bytes", PasswordMaxBytes))
	case !hasLetter || !hasDigit:
		v.add(field, "Password must contain at least one letter and one digit")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("identifier", username == "" && email == "", "Username or email is required")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError(message, apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
