// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Credential Store

// AccountRepository is the only read/write path for Account records.
//
// Lookups return an apperr NOT_FOUND error when no row matches. Writes of a
// username or email that already exists return an apperr CONFLICT error.
type AccountRepository interface {

	/*
		FindByUsernameOrEmail returns the account whose username equals username
		or whose email equals email. Both inputs must already be normalized.

		Returns:
		  - *Account: Full record including secrets
		  - error: apperr.NotFound or storage errors
	*/
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*Account, error)

	/*
		FindByID returns the full record, secrets included, for credential checks.
	*/
	FindByID(ctx context.Context, id string) (*Account, error)

	/*
		FindProfileByID returns the account without PasswordHash or RefreshToken.
		The Session Gate resolves identities through this projection.
	*/
	FindProfileByID(ctx context.Context, id string) (*Account, error)

	/*
		Create inserts a new account. PasswordHash must already be a hash.
	*/
	Create(ctx context.Context, account *Account) error

	/*
		SetRefreshToken writes the current refresh token and nothing else.
	*/
	SetRefreshToken(ctx context.Context, id, token string) error

	/*
		RotateRefreshToken replaces the refresh token only while current is
		still the one on record.

		Returns:
		  - error: apperr.NotFound when the id is unknown or current was
		    already rotated or cleared
	*/
	RotateRefreshToken(ctx context.Context, id, current, next string) error

	/*
		SetPasswordHash writes the password hash and nothing else. hash must be
		a value produced by the password hasher.
	*/
	SetPasswordHash(ctx context.Context, id, hash string) error

	/*
		UpdateProfile writes the non-nil fields of changes and leaves every
		other column, secrets included, untouched.

		Returns:
		  - *Account: Secrets-free projection after the update
		  - error: apperr.NotFound, apperr.Conflict on a taken email, or storage errors
	*/
	UpdateProfile(ctx context.Context, id string, changes ProfileChanges) (*Account, error)

	/*
		ClearRefreshToken unsets the stored refresh token of the account.
	*/
	ClearRefreshToken(ctx context.Context, id string) error
}

// ProfileChanges lists the profile columns to overwrite. Nil means unchanged.
type ProfileChanges struct {
	FullName      *string
	Email         *string
	AvatarURL     *string
	CoverImageURL *string
}

// # Login Throttle

// LoginAttemptRepository counts failed logins per identifier inside a window.
type LoginAttemptRepository interface {

	/*
		Failures returns the number of failed attempts currently on record.
	*/
	Failures(ctx context.Context, identifier string) (int, error)

	/*
		RecordFailure increments the counter. The window starts at the first failure.

		Returns:
		  - int: Failures after the increment
		  - error: Storage errors
	*/
	RecordFailure(ctx context.Context, identifier string, window time.Duration) (int, error)

	/*
		Reset clears the counter after a successful login.
	*/
	Reset(ctx context.Context, identifier string) error

	/*
		RetryAfter reports the time left in the current window, 0 if none is open.
	*/
	RetryAfter(ctx context.Context, identifier string) (time.Duration, error)
}
