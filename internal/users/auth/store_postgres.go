// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/taibuivan/vidly/internal/platform/apperr"
	"github.com/taibuivan/vidly/internal/platform/dberr"
	"github.com/taibuivan/vidly/internal/platform/postgres"
)

// # Account Repository

const (
	accountColumns = `id, username, email, fullname, avatarurl, coverimageurl, passwordhash, refreshtoken, createdat, updatedat`
	profileColumns = `id, username, email, fullname, avatarurl, coverimageurl, createdat, updatedat`

	resourceUser = "User"
)

// PostgresAccountRepository implements [AccountRepository] on the users.account table.
type PostgresAccountRepository struct {
	pool postgres.PgxPool
}

// NewAccountRepository creates a PostgreSQL implementation of [AccountRepository].
func NewAccountRepository(pool postgres.PgxPool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
FindByUsernameOrEmail resolves an account by either unique identity column.

Parameters:
  - ctx: context.Context
  - username: string (normalized, may be empty)
  - email: string (normalized, may be empty)

Returns:
  - *Account: Full record
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*Account, error) {
	const query = `SELECT ` + accountColumns + `
		FROM users.account
		WHERE username = $1 OR email = $2
		LIMIT 1`

	account, err := scanAccount(repository.pool.QueryRow(ctx, query, username, email))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_repo_find_by_identity_failed", resourceUser)
	}
	return account, nil
}

/*
FindByID retrieves the full account record by primary key.
*/
func (repository *PostgresAccountRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	const query = `SELECT ` + accountColumns + `
		FROM users.account
		WHERE id = $1`

	account, err := scanAccount(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_repo_find_by_id_failed", resourceUser)
	}
	return account, nil
}

/*
FindProfileByID retrieves the secrets-free projection of the account.
*/
func (repository *PostgresAccountRepository) FindProfileByID(ctx context.Context, id string) (*Account, error) {
	const query = `SELECT ` + profileColumns + `
		FROM users.account
		WHERE id = $1`

	account, err := scanProfile(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_repo_find_profile_failed", resourceUser)
	}
	return account, nil
}

/*
Create inserts a new account and fills in the server-assigned timestamps.

Returns:
  - error: apperr.Conflict on duplicate username/email, or database errors
*/
func (repository *PostgresAccountRepository) Create(ctx context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, fullname, avatarurl, coverimageurl, passwordhash, refreshtoken
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING createdat, updatedat`

	err := repository.pool.QueryRow(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.FullName,
		account.AvatarURL,
		account.CoverImageURL,
		account.PasswordHash,
		toText(account.RefreshToken),
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	return dberr.Wrap(err, "postgres_account_repo_create_failed", resourceUser)
}

// # Field-Scoped Writes
//
// Each use case writes only its own columns, so concurrent requests touching
// different fields of one account never undo each other.

/*
SetRefreshToken stores the current refresh token.

Returns:
  - error: apperr.NotFound if no account has the id
*/
func (repository *PostgresAccountRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = $2, updatedat = NOW()
		WHERE id = $1`

	return repository.execOne(ctx, "postgres_account_repo_set_refresh_token_failed", query, id, token)
}

/*
RotateRefreshToken swaps current for next in a single conditional UPDATE, so
two refreshes racing on one token cannot both succeed.

Returns:
  - error: apperr.NotFound if the id is unknown or current is no longer on record
*/
func (repository *PostgresAccountRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = $3, updatedat = NOW()
		WHERE id = $1 AND refreshtoken = $2`

	return repository.execOne(ctx, "postgres_account_repo_rotate_refresh_token_failed", query, id, current, next)
}

/*
SetPasswordHash stores a new password hash.

Returns:
  - error: apperr.NotFound if no account has the id
*/
func (repository *PostgresAccountRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = NOW()
		WHERE id = $1`

	return repository.execOne(ctx, "postgres_account_repo_set_password_failed", query, id, hash)
}

/*
UpdateProfile overwrites the profile columns present in changes. NULL
parameters fall back to the current value through COALESCE.

Returns:
  - *Account: Secrets-free projection after the update
  - error: apperr.NotFound, apperr.Conflict on duplicate email, or database errors
*/
func (repository *PostgresAccountRepository) UpdateProfile(ctx context.Context, id string, changes ProfileChanges) (*Account, error) {
	const query = `
		UPDATE users.account SET
			fullname = COALESCE($2, fullname),
			email = COALESCE($3, email),
			avatarurl = COALESCE($4, avatarurl),
			coverimageurl = COALESCE($5, coverimageurl),
			updatedat = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	account, err := scanProfile(repository.pool.QueryRow(ctx, query,
		id,
		toText(changes.FullName),
		toText(changes.Email),
		toText(changes.AvatarURL),
		toText(changes.CoverImageURL),
	))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_repo_update_profile_failed", resourceUser)
	}
	return account, nil
}

/*
ClearRefreshToken sets refreshtoken to NULL.

Returns:
  - error: apperr.NotFound if no account has the id
*/
func (repository *PostgresAccountRepository) ClearRefreshToken(ctx context.Context, id string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = NULL, updatedat = NOW()
		WHERE id = $1`

	return repository.execOne(ctx, "postgres_account_repo_clear_refresh_token_failed", query, id)
}

// execOne runs a single-row UPDATE and reports NotFound when no row matched.
func (repository *PostgresAccountRepository) execOne(ctx context.Context, operation, query string, args ...any) error {
	tag, err := repository.pool.Exec(ctx, query, args...)
	if err != nil {
		return dberr.Wrap(err, operation, resourceUser)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceUser)
	}
	return nil
}

// # Scanning Helpers

func scanProfile(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.AvatarURL,
		&account.CoverImageURL,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	var refreshToken pgtype.Text

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FullName,
		&account.AvatarURL,
		&account.CoverImageURL,
		&account.PasswordHash,
		&refreshToken,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if refreshToken.Valid {
		token := refreshToken.String
		account.RefreshToken = &token
	}
	return account, nil
}

func toText(value *string) pgtype.Text {
	if value == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *value, Valid: true}
}
