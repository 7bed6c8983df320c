// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taibuivan/vidly/internal/platform/apperr"
	"github.com/taibuivan/vidly/internal/platform/constants"
	"github.com/taibuivan/vidly/internal/platform/storage"
	"github.com/taibuivan/vidly/internal/platform/validate"
	"github.com/taibuivan/vidly/internal/users/auth"
	"github.com/taibuivan/vidly/pkg/normalize"
)

// # Service Layer

// Service orchestrates profile updates for the authenticated account.
type Service struct {
	accountRepository auth.AccountRepository
	uploader          storage.Uploader
	logger            *zap.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(accountRepo auth.AccountRepository, uploader storage.Uploader, logger *zap.Logger) *Service {
	return &Service{
		accountRepository: accountRepo,
		uploader:          uploader,
		logger:            logger,
	}
}

// # Profile Management

/*
CurrentUser reloads the secrets-free projection of an account.

Parameters:
  - ctx: context.Context
  - accountID: string

Returns:
  - *auth.Account: The profile
  - error: NotFound or storage failures
*/
func (service *Service) CurrentUser(ctx context.Context, accountID string) (*auth.Account, error) {
	account, err := service.accountRepository.FindProfileByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_current_user_failed: %w", err)
	}
	return account, nil
}

/*
UpdateAccount replaces the display name and email of an account.

Description: The email is normalized like at registration. A collision with
another account surfaces as Conflict, either from the lookup or from the
unique index when two updates race.

Parameters:
  - ctx: context.Context
  - accountID: string
  - input: UpdateAccountInput

Returns:
  - *auth.Account: The updated profile
  - error: ValidationError, Conflict or storage failures
*/
func (service *Service) UpdateAccount(ctx context.Context, accountID string, input UpdateAccountInput) (*auth.Account, error) {
	fullName := normalize.DisplayName(input.FullName)
	email := normalize.Identifier(input.Email)

	var missing []apperr.FieldError
	if fullName == "" {
		missing = append(missing, apperr.FieldError{Field: auth.FieldFullName, Message: "is required"})
	}
	if email == "" {
		missing = append(missing, apperr.FieldError{Field: auth.FieldEmail, Message: "is required"})
	}
	if len(missing) > 0 {
		return nil, apperr.ValidationError(msgAccountRequired, missing...)
	}

	validator := &validate.Validator{}
	validator.MaxLen(auth.FieldFullName, fullName, maxFullNameLength).
		Email(auth.FieldEmail, email)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	existing, err := service.accountRepository.FindByUsernameOrEmail(ctx, "", email)
	switch {
	case err == nil && existing.ID != accountID:
		return nil, apperr.Conflict(msgEmailTaken)
	case err != nil && !apperr.HasCode(err, apperr.CodeNotFound):
		return nil, fmt.Errorf("account_service_email_lookup_failed: %w", err)
	}

	return service.update(ctx, accountID, "account_updated", auth.ProfileChanges{
		FullName: &fullName,
		Email:    &email,
	})
}

// # Images

/*
UpdateAvatar uploads a new avatar and stores its URL.

Returns:
  - *auth.Account: The updated profile
  - error: ValidationError when file is nil, Internal on upload failure
*/
func (service *Service) UpdateAvatar(ctx context.Context, accountID string, file *storage.LocalFile) (*auth.Account, error) {
	if file == nil {
		return nil, validate.RequiredError(auth.FieldAvatar, msgAvatarRequired)
	}

	asset, err := service.uploader.Upload(ctx, constants.StoragePrefixAvatar, file)
	if err != nil || asset.URL == "" {
		return nil, apperr.InternalMessage(msgAvatarUpload, err)
	}

	return service.update(ctx, accountID, "avatar_updated", auth.ProfileChanges{AvatarURL: &asset.URL})
}

/*
UpdateCoverImage uploads a new cover image and stores its URL.

Returns:
  - *auth.Account: The updated profile
  - error: ValidationError when file is nil, Internal on upload failure
*/
func (service *Service) UpdateCoverImage(ctx context.Context, accountID string, file *storage.LocalFile) (*auth.Account, error) {
	if file == nil {
		return nil, validate.RequiredError(auth.FieldCoverImage, msgCoverRequired)
	}

	asset, err := service.uploader.Upload(ctx, constants.StoragePrefixCover, file)
	if err != nil || asset.URL == "" {
		return nil, apperr.InternalMessage(msgCoverUpload, err)
	}

	return service.update(ctx, accountID, "cover_image_updated", auth.ProfileChanges{CoverImageURL: &asset.URL})
}

// update writes only the changed profile columns and returns the
// secrets-free projection. Password hash and refresh token are never touched.
func (service *Service) update(ctx context.Context, accountID, event string, changes auth.ProfileChanges) (*auth.Account, error) {
	updated, err := service.accountRepository.UpdateProfile(ctx, accountID, changes)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict(msgEmailTaken).WithCause(err)
		}
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info(event, zap.String("user_id", accountID))
	return updated, nil
}
