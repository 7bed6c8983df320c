// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the credential and session lifecycle of a Vidly account.

It owns the Account entity and its Credential Store, and drives password
hashing, JWT access/refresh issuance, refresh-token rotation and the Session
Gate that guards protected routes.

# Architecture

  - Account: the one persisted entity. Secrets never leave the package in JSON.
  - Repository: Postgres for accounts, Redis for the login-attempt throttle.
  - Service: register, login, logout, refresh, change-password, authenticate.
  - Handler: chi routes, cookie transport and the Gate middleware.
*/
package auth

import (
	"time"

	"github.com/taibuivan/vidly/internal/platform/sec"
)

// # Domain Entities

// Account represents one registered member of the Vidly platform.
//
// PasswordHash and RefreshToken are excluded from every JSON encoding.
type Account struct {
	ID            string    `json:"_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	PasswordHash  string    `json:"-"`
	RefreshToken  *string   `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Identity returns the claim set embedded in access tokens.
func (account *Account) Identity() sec.Identity {
	return sec.Identity{
		ID:       account.ID,
		Email:    account.Email,
		Username: account.Username,
		FullName: account.FullName,
	}
}

// HasRefreshToken reports whether token is the refresh token currently on record.
func (account *Account) HasRefreshToken(token string) bool {
	return account.RefreshToken != nil && token != "" && sec.Equal(*account.RefreshToken, token)
}

// Session is the result of a login or a refresh.
type Session struct {
	Account      *Account `json:"user,omitempty"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// # Field Identifiers

// Field names used in request payloads and validation errors.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldFullName     = "fullName"
	FieldPassword     = "password"
	FieldOldPassword  = "oldPassword"
	FieldNewPassword  = "newPassword"
	FieldAvatar       = "avatar"
	FieldCoverImage   = "coverImage"
	FieldRefreshToken = "refreshToken"
)
