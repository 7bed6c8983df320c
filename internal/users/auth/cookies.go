// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/taibuivan/vidly/internal/platform/constants"
)

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (cfg CookieConfig) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.CookiePath,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// setSessionCookies writes both tokens as http-only cookies.
func (cfg CookieConfig) setSessionCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, cfg.cookie(constants.AccessTokenCookieName, session.AccessToken, cfg.AccessTTL))
	http.SetCookie(writer, cfg.cookie(constants.RefreshTokenCookieName, session.RefreshToken, cfg.RefreshTTL))
}

// clearSessionCookies expires both session cookies.
func (cfg CookieConfig) clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		cookie := cfg.cookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
		http.SetCookie(writer, cookie)
	}
}
