// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Client Messages

const (
	msgUnauthorized        = "Unauthorized request"
	msgInvalidAccessToken  = "Invalid access token"
	msgInvalidRefreshToken = "Invalid refresh token"
	msgRefreshTokenUsed    = "Refresh token is expired or used"
	msgUserExists          = "User with email or username already exists"
	msgUserNotFound        = "User does not exist"
	msgInvalidCredentials  = "Invalid user credentials"
	msgInvalidOldPassword  = "Invalid old password"
	msgAvatarRequired      = "Avatar file is required"
	msgAvatarUpload        = "Failed to upload avatar"
	msgCoverUpload         = "Failed to upload cover image"
	msgRegisterLookup      = "Something went wrong while registering the user"
	msgIdentifierRequired  = "Username or email is required"
)
