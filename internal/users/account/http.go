// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/vidly/internal/platform/request"
	"github.com/taibuivan/vidly/internal/platform/respond"
	"github.com/taibuivan/vidly/internal/platform/storage"
	"github.com/taibuivan/vidly/internal/users/auth"
)

// Handler implements the HTTP layer for profile management.
type Handler struct {
	accountService *Service
	gate           func(http.Handler) http.Handler
	uploadDir      string
}

// NewHandler constructs a new account [Handler]. gate must admit only
// authenticated requests; see [auth.Service.Gate].
func NewHandler(service *Service, gate func(http.Handler) http.Handler, uploadDir string) *Handler {
	return &Handler{accountService: service, gate: gate, uploadDir: uploadDir}
}

// Mount registers the profile routes on router, all behind the gate.
//
// # Endpoints
//   - GET        /current-user
//   - PATCH|POST /update-account
//   - PATCH      /update-avatar      (multipart avatar)
//   - PATCH      /update-cover-image (multipart coverImage)
func (handler *Handler) Mount(router chi.Router) {
	router.Group(func(protected chi.Router) {
		protected.Use(handler.gate)

		protected.Get("/current-user", handler.currentUser)
		protected.Patch("/update-account", handler.updateAccount)
		protected.Post("/update-account", handler.updateAccount)
		protected.Patch("/update-avatar", handler.updateAvatar)
		protected.Patch("/update-cover-image", handler.updateCoverImage)
	})
}

/*
GET /api/v1/users/current-user.

Description: Returns the account resolved by the Session Gate.

Response:
  - 200: Account: Secrets-free profile
  - 401: Gate rejection
*/
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	account, err := auth.RequiredAccount(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account, msgCurrentUser)
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

/*
PATCH /api/v1/users/update-account.

Request:
  - body: {fullName, email} (both required)

Response:
  - 200: Account: The updated profile
  - 400: Missing or invalid field
  - 409: Email held by another account
*/
func (handler *Handler) updateAccount(writer http.ResponseWriter, request *http.Request) {
	account, err := auth.RequiredAccount(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateAccountRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.accountService.UpdateAccount(request.Context(), account.ID, UpdateAccountInput{
		FullName: input.FullName,
		Email:    input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated, msgAccountUpdated)
}

/*
PATCH /api/v1/users/update-avatar.

Request:
  - body: multipart with a required avatar file

Response:
  - 200: Account: The updated profile
  - 400: Missing file
  - 500: Upload failure
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	handler.replaceImage(writer, request, auth.FieldAvatar, handler.accountService.UpdateAvatar, msgAvatarUpdated)
}

/*
PATCH /api/v1/users/update-cover-image.

Request:
  - body: multipart with a required coverImage file

Response:
  - 200: Account: The updated profile
  - 400: Missing file
  - 500: Upload failure
*/
func (handler *Handler) updateCoverImage(writer http.ResponseWriter, request *http.Request) {
	handler.replaceImage(writer, request, auth.FieldCoverImage, handler.accountService.UpdateCoverImage, msgCoverUpdated)
}

type imageUpdate func(ctx context.Context, accountID string, file *storage.LocalFile) (*auth.Account, error)

// replaceImage stages the multipart field, hands it to update and removes the
// staged copy whatever the outcome.
func (handler *Handler) replaceImage(writer http.ResponseWriter, request *http.Request, field string, update imageUpdate, message string) {
	account, err := auth.RequiredAccount(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.ParseMultipart(request); err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer func() {
		if request.MultipartForm != nil {
			_ = request.MultipartForm.RemoveAll()
		}
	}()

	file, err := requestutil.StageFile(request, field, handler.uploadDir)
	defer requestutil.DiscardFile(request, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := update(request.Context(), account.ID, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated, message)
}
