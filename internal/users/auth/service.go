// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/taibuivan/vidly/internal/platform/apperr"
	"github.com/taibuivan/vidly/internal/platform/constants"
	"github.com/taibuivan/vidly/internal/platform/sec"
	"github.com/taibuivan/vidly/internal/platform/storage"
	"github.com/taibuivan/vidly/internal/platform/validate"
	"github.com/taibuivan/vidly/pkg/normalize"
	"github.com/taibuivan/vidly/pkg/uuid"
)

// # Contracts & Types

// PasswordHasher is the one-way password transform.
type PasswordHasher interface {
	Hash(plainTextPassword string) (string, error)
	Verify(plainTextPassword, existingHash string) (bool, error)
}

// TokenIssuer mints and verifies access and refresh tokens.
type TokenIssuer interface {
	IssueAccessToken(identity sec.Identity) (string, error)
	IssueRefreshToken(userID string) (string, error)
	VerifyAccessToken(token string) (*sec.AccessClaims, error)
	VerifyRefreshToken(token string) (*sec.RefreshClaims, error)
}

// ThrottleConfig bounds failed logins per identifier.
type ThrottleConfig struct {
	MaxAttempts int
	Lockout     time.Duration
}

// Service implements the credential and session use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token issuance
// or the refresh-token comparison must be reviewed carefully.
type Service struct {
	accountRepository      AccountRepository
	loginAttemptRepository LoginAttemptRepository
	hasher                 PasswordHasher
	tokens                 TokenIssuer
	uploader               storage.Uploader
	throttle               ThrottleConfig
	logger                 *zap.Logger
}

// NewService constructs a new [Service] with its collaborators.
func NewService(
	accountRepo AccountRepository,
	attemptRepo LoginAttemptRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	uploader storage.Uploader,
	throttle ThrottleConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		accountRepository:      accountRepo,
		loginAttemptRepository: attemptRepo,
		hasher:                 hasher,
		tokens:                 tokens,
		uploader:               uploader,
		throttle:               throttle,
		logger:                 logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *storage.LocalFile
	CoverImage *storage.LocalFile
}

/*
Register validates, uploads assets, hashes and persists a new account.

Description: The uniqueness check and both uploads happen before the insert.
A missing cover image is allowed; a failed cover upload is not.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created account without secrets
  - error: ValidationError, Conflict or Internal
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	username := normalize.Identifier(input.Username)
	email := normalize.Identifier(input.Email)
	fullName := normalize.DisplayName(input.FullName)

	validator := &validate.Validator{}
	validator.Required(FieldFullName, fullName).
		MaxLen(FieldFullName, fullName, 100).
		Required(FieldUsername, username).
		Username(FieldUsername, username).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Password(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.Avatar == nil {
		return nil, validate.RequiredError(FieldAvatar, msgAvatarRequired)
	}

	// Uniqueness is checked up front so a duplicate never costs an upload.
	_, err := service.accountRepository.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return nil, apperr.Conflict(msgUserExists)
	case !apperr.HasCode(err, apperr.CodeNotFound):
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	avatar, err := service.uploader.Upload(ctx, constants.StoragePrefixAvatar, input.Avatar)
	if err != nil || avatar.URL == "" {
		return nil, apperr.InternalMessage(msgAvatarUpload, err)
	}

	var coverURL string
	if input.CoverImage != nil {
		cover, err := service.uploader.Upload(ctx, constants.StoragePrefixCover, input.CoverImage)
		if err != nil {
			return nil, apperr.InternalMessage(msgCoverUpload, err)
		}
		coverURL = cover.URL
	}

	passwordHash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	account := &Account{
		ID:            uuid.New(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AvatarURL:     avatar.URL,
		CoverImageURL: coverURL,
		PasswordHash:  passwordHash,
	}

	if err := service.accountRepository.Create(ctx, account); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict(msgUserExists).WithCause(err)
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	created, err := service.accountRepository.FindProfileByID(ctx, account.ID)
	if err != nil {
		return nil, apperr.InternalMessage(msgRegisterLookup, err)
	}

	service.logger.Info("account_registered", zap.String("user_id", created.ID))
	return created, nil
}

// # Authentication Flow

// LoginInput identifies the account by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

/*
Login verifies credentials and opens a new session.

Description: Any previously issued refresh token is overwritten, so only the
most recent login can refresh.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *Session: Account without secrets plus both tokens
  - error: ValidationError (unknown user), Unauthorized (bad password),
    RateLimited (throttled) or Internal
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	username := normalize.Identifier(input.Username)
	email := normalize.Identifier(input.Email)

	validator := &validate.Validator{}
	validator.Custom(FieldUsername, username == "" && email == "", msgIdentifierRequired).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	identifier := username
	if identifier == "" {
		identifier = email
	}

	if err := service.checkThrottle(ctx, identifier); err != nil {
		return nil, err
	}

	account, err := service.accountRepository.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			if recordErr := service.recordFailure(ctx, identifier); recordErr != nil {
				return nil, recordErr
			}
			return nil, apperr.ValidationError(msgUserNotFound)
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// Password failures count per account, so alternating username and email
	// shares one budget.
	accountKey := ThrottleKey(account.ID)
	if err := service.checkThrottle(ctx, accountKey); err != nil {
		return nil, err
	}

	matches, err := service.hasher.Verify(input.Password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_verify_failed: %w", err)
	}
	if !matches {
		if recordErr := service.recordFailure(ctx, accountKey); recordErr != nil {
			return nil, recordErr
		}
		service.logger.Warn("login_failed", zap.String("user_id", account.ID))
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	for _, key := range []string{identifier, accountKey} {
		if err := service.loginAttemptRepository.Reset(ctx, key); err != nil {
			return nil, fmt.Errorf("auth_service_login_throttle_reset_failed: %w", err)
		}
	}

	session, err := service.openSession(ctx, account, "")
	if err != nil {
		return nil, err
	}

	service.logger.Info("login_succeeded", zap.String("user_id", account.ID))
	return session, nil
}

/*
Logout unsets the stored refresh token. The caller has already passed the gate.
*/
func (service *Service) Logout(ctx context.Context, accountID string) error {
	if err := service.accountRepository.ClearRefreshToken(ctx, accountID); err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return apperr.Unauthorized(msgInvalidAccessToken).WithCause(err)
		}
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.logger.Info("logout_succeeded", zap.String("user_id", accountID))
	return nil
}

// # Session Management

/*
Refresh implements refresh-token rotation.

Description: The presented token must verify under the refresh secret and be
byte-equal to the token on record. On success both tokens are replaced and the
new refresh token overwrites the old one, so each refresh token works once.

Parameters:
  - ctx: context.Context
  - presented: string (refresh token from cookie or body)

Returns:
  - *Session: New token pair (Account is nil)
  - error: Unauthorized or Internal
*/
func (service *Service) Refresh(ctx context.Context, presented string) (*Session, error) {
	if presented == "" {
		return nil, apperr.Unauthorized(msgUnauthorized)
	}

	claims, err := service.tokens.VerifyRefreshToken(presented)
	if err != nil {
		return nil, apperr.Unauthorized(msgInvalidRefreshToken).WithCause(err)
	}

	account, err := service.accountRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized(msgInvalidRefreshToken).WithCause(err)
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	if !account.HasRefreshToken(presented) {
		service.logger.Warn("refresh_token_reused", zap.String("user_id", account.ID))
		return nil, apperr.Unauthorized(msgRefreshTokenUsed)
	}

	session, err := service.openSession(ctx, account, presented)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			service.logger.Warn("refresh_token_reused", zap.String("user_id", account.ID))
			return nil, apperr.Unauthorized(msgRefreshTokenUsed).WithCause(err)
		}
		return nil, err
	}
	session.Account = nil
	return session, nil
}

/*
openSession issues both tokens and persists the new refresh token. A non-empty
current makes the write conditional on that token still being on record, and
a lost race surfaces as NOT_FOUND.
*/
func (service *Service) openSession(ctx context.Context, account *Account, current string) (*Session, error) {
	accessToken, err := service.tokens.IssueAccessToken(account.Identity())
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokens.IssueRefreshToken(account.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if current == "" {
		err = service.accountRepository.SetRefreshToken(ctx, account.ID, refreshToken)
	} else {
		err = service.accountRepository.RotateRefreshToken(ctx, account.ID, current, refreshToken)
	}
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_session_save_failed: %w", err)
	}
	account.RefreshToken = &refreshToken

	return &Session{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// # Password Management

// ChangePasswordInput carries the current and desired passwords.
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

/*
ChangePassword replaces the password hash after verifying the old password.

Returns:
  - error: ValidationError when the old password is wrong, or Internal
*/
func (service *Service) ChangePassword(ctx context.Context, accountID string, input ChangePasswordInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Password(FieldNewPassword, input.NewPassword)
	if err := validator.Err(); err != nil {
		return err
	}

	account, err := service.accountRepository.FindByID(ctx, accountID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return apperr.Unauthorized(msgInvalidAccessToken).WithCause(err)
		}
		return fmt.Errorf("auth_service_change_password_lookup_failed: %w", err)
	}

	matches, err := service.hasher.Verify(input.OldPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_verify_failed: %w", err)
	}
	if !matches {
		return apperr.ValidationError(msgInvalidOldPassword)
	}

	passwordHash, err := service.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.accountRepository.SetPasswordHash(ctx, account.ID, passwordHash); err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return apperr.Unauthorized(msgInvalidAccessToken).WithCause(err)
		}
		return fmt.Errorf("auth_service_change_password_failed: %w", err)
	}

	service.logger.Info("password_changed", zap.String("user_id", account.ID))
	return nil
}

// # Session Gate

// ErrTokenMissing marks a request that carried no access token at all.
var ErrTokenMissing = errors.New("auth: token missing")

/*
Authenticate resolves the account behind an access token.

Description: A missing token, a token that fails verification and a valid
token for a vanished account all surface as 401. The cause distinguishes
them: [ErrTokenMissing], [sec.ErrTokenInvalid] or a NOT_FOUND error.

Returns:
  - *Account: Secrets-free projection
  - error: Unauthorized or Internal
*/
func (service *Service) Authenticate(ctx context.Context, accessToken string) (*Account, error) {
	if accessToken == "" {
		return nil, apperr.Unauthorized(msgUnauthorized).WithCause(ErrTokenMissing)
	}

	claims, err := service.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, apperr.Unauthorized(msgInvalidAccessToken).WithCause(err)
	}

	account, err := service.accountRepository.FindProfileByID(ctx, claims.UserID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized(msgInvalidAccessToken).WithCause(err)
		}
		return nil, fmt.Errorf("auth_service_authenticate_lookup_failed: %w", err)
	}

	return account, nil
}

// # Throttle Helpers

// ThrottleKey is the login-attempt key for password failures against an account.
func ThrottleKey(accountID string) string {
	return "account:" + accountID
}

func (service *Service) checkThrottle(ctx context.Context, identifier string) error {
	failures, err := service.loginAttemptRepository.Failures(ctx, identifier)
	if err != nil {
		return fmt.Errorf("auth_service_login_throttle_failed: %w", err)
	}
	if failures < service.throttle.MaxAttempts {
		return nil
	}

	wait, err := service.loginAttemptRepository.RetryAfter(ctx, identifier)
	if err != nil {
		return fmt.Errorf("auth_service_login_throttle_failed: %w", err)
	}
	if wait <= 0 {
		wait = service.throttle.Lockout
	}

	service.logger.Warn("login_throttled", zap.String("identifier", identifier))
	return apperr.RateLimited(int(math.Ceil(wait.Seconds())))
}

func (service *Service) recordFailure(ctx context.Context, identifier string) error {
	if _, err := service.loginAttemptRepository.RecordFailure(ctx, identifier, service.throttle.Lockout); err != nil {
		return fmt.Errorf("auth_service_login_throttle_failed: %w", err)
	}
	return nil
}
