// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/vidly/internal/platform/request"
	"github.com/taibuivan/vidly/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the credential and session HTTP endpoints.
//
// # Scope
//
// Registration, login, logout, refresh-token rotation and password change.
// The handler owns cookie transport; the [Service] never sees HTTP types.
type Handler struct {
	authService *Service
	cookies     CookieConfig
	uploadDir   string
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, cookies CookieConfig, uploadDir string) *Handler {
	return &Handler{authService: service, cookies: cookies, uploadDir: uploadDir}
}

// Mount registers the authentication routes on router.
//
// # Endpoints
//   - POST /register        : Creates a new account (multipart).
//   - POST /login           : Opens a session and sets both cookies.
//   - POST /refresh-token   : Rotates both tokens.
//   - POST /logout          : Gate; clears the stored refresh token.
//   - POST /change-password : Gate; replaces the password.
func (handler *Handler) Mount(router chi.Router) {
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refreshToken)

	router.Group(func(protected chi.Router) {
		protected.Use(handler.authService.Gate)
		protected.Post("/logout", handler.logout)
		protected.Post("/change-password", handler.changePassword)
	})
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

/*
register handles the creation of a new account.

POST /api/v1/users/register

Request:
  - Body: multipart (username, email, fullName, password, avatar, coverImage?)

Response:
  - 201: Account: Created account without secrets
  - 400: Validation failure or missing avatar
  - 409: Username or email already exists
  - 500: Upload or storage failure
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseMultipart(request); err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer func() {
		if request.MultipartForm != nil {
			_ = request.MultipartForm.RemoveAll()
		}
	}()

	avatar, err := requestutil.StageFile(request, FieldAvatar, handler.uploadDir)
	defer requestutil.DiscardFile(request, avatar)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cover, err := requestutil.StageFile(request, FieldCoverImage, handler.uploadDir)
	defer requestutil.DiscardFile(request, cover)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Register(request.Context(), RegisterInput{
		Username:   request.FormValue(FieldUsername),
		Email:      request.FormValue(FieldEmail),
		FullName:   request.FormValue(FieldFullName),
		Password:   request.FormValue(FieldPassword),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account, "User registered successfully")
}

/*
login authenticates by username or email.

POST /api/v1/users/login

Response:
  - 200: {user, accessToken, refreshToken}; sets accessToken and refreshToken cookies
  - 400: Unknown user or validation failure
  - 401: Wrong password
  - 429: Too many failed attempts
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.setSessionCookies(writer, session)
	respond.OK(writer, session, "User logged in successfully")
}

/*
logout ends the current session.

POST /api/v1/users/logout

Response:
  - 200: Cookies cleared
  - 401: Gate rejection
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	account, err := RequiredAccount(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), account.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.clearSessionCookies(writer)
	respond.OK(writer, struct{}{}, "User logged out")
}

/*
refreshToken rotates the session tokens.

POST /api/v1/users/refresh-token

Request:
  - Cookie refreshToken, or Body {refreshToken}

Response:
  - 200: {accessToken, refreshToken}; sets both cookies
  - 401: Missing, invalid or superseded refresh token
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Refresh(request.Context(), requestutil.RefreshToken(request, input.RefreshToken))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookies.setSessionCookies(writer, session)
	respond.OK(writer, tokensResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, "Access token refreshed")
}

/*
changePassword replaces the caller's password.

POST /api/v1/users/change-password

Response:
  - 200: Password changed
  - 400: Wrong old password or weak new password
  - 401: Gate rejection
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	account, err := RequiredAccount(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ChangePassword(request.Context(), account.ID, ChangePasswordInput{
		OldPassword: input.OldPassword,
		NewPassword: input.NewPassword,
	}); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, struct{}{}, "Password changed successfully")
}
