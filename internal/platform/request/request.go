// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It covers JSON body decoding, credential extraction from cookies and headers,
and staging multipart files for the asset store.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/taibuivan/vidly/internal/platform/apperr"
	"github.com/taibuivan/vidly/internal/platform/constants"
	"github.com/taibuivan/vidly/internal/platform/ctxutil"
	"github.com/taibuivan/vidly/internal/platform/storage"
	"github.com/taibuivan/vidly/internal/platform/validate"
)

// multipartMemory is the in-memory threshold before multipart parts spill to disk.
const multipartMemory = 1 << 20

// ErrBodyTooLarge is returned when the request body exceeds the configured limit.
var ErrBodyTooLarge = apperr.ValidationError("Request body too large")

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if request.Body == nil || request.Body == http.NoBody {
		return nil
	}

	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return ErrBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
AccessToken returns the access token presented by the client.

The accessToken cookie takes precedence over an "Authorization: Bearer" header.
Returns an empty string when neither is present.
*/
func AccessToken(request *http.Request) string {
	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return BearerToken(request)
}

/*
BearerToken extracts the token from an "Authorization: Bearer <token>" header.
*/
func BearerToken(request *http.Request) string {
	header := request.Header.Get(constants.HeaderAuthorization)
	if len(header) < len(constants.BearerPrefix) || !strings.EqualFold(header[:len(constants.BearerPrefix)], constants.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(constants.BearerPrefix):])
}

/*
RefreshToken returns the refresh token from the refreshToken cookie, falling
back to the value supplied in the request body.
*/
func RefreshToken(request *http.Request, bodyToken string) string {
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return strings.TrimSpace(bodyToken)
}

/*
ParseMultipart parses a multipart/form-data body.
*/
func ParseMultipart(request *http.Request) error {
	if err := request.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return ErrBodyTooLarge
		}
		return apperr.ValidationError("Invalid multipart form")
	}
	return nil
}

/*
StageFile copies the named multipart file to dir.

Returns (nil, nil) when the field is absent, so optional files can be skipped.
The caller owns the returned file and must remove it.
*/
func StageFile(request *http.Request, field, dir string) (*storage.LocalFile, error) {
	part, header, err := request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperr.ValidationError(fmt.Sprintf("Invalid file in field %q", field))
	}
	defer part.Close()

	contentType := header.Header.Get(constants.HeaderContentType)
	file, err := storage.Stage(part, dir, header.Filename, contentType)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return file, nil
}

/*
DiscardFile removes a staged file owned by the request. A failure is logged and
not retried. A nil file is ignored.
*/
func DiscardFile(request *http.Request, file *storage.LocalFile) {
	if err := file.Remove(); err != nil {
		ctxutil.GetLogger(request.Context()).Warn("staged_file_remove_failed",
			zap.String("path", file.Path),
			zap.Error(err),
		)
	}
}
