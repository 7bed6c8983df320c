// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile management for an authenticated user.

It lets the caller read their own account and change the mutable identity
fields: display name, email, avatar and cover image.

# Architecture

  - Domain: This package depends on the auth package for the Account entity
    and its Credential Store; it owns no table of its own.
  - Security: Every endpoint sits behind the auth Session Gate.
*/
package account

// # Client Messages

const (
	msgEmailTaken      = "Email is already in use"
	msgAvatarRequired  = "Avatar file is missing"
	msgCoverRequired   = "Cover image file is missing"
	msgAvatarUpload    = "Error while uploading avatar"
	msgCoverUpload     = "Error while uploading cover image"
	msgAccountRequired = "All fields are required"
	msgAccountUpdated  = "Account details updated successfully"
	msgAvatarUpdated   = "Avatar image updated successfully"
	msgCoverUpdated    = "Cover image updated successfully"
	msgCurrentUser     = "User fetched successfully"
)

// maxFullNameLength matches the registration limit.
const maxFullNameLength = 100

// UpdateAccountInput carries the fields replaced by UpdateAccount. Both are required.
type UpdateAccountInput struct {
	FullName string
	Email    string
}
