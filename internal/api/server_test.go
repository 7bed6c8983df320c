// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/vidly/internal/api"
	"github.com/taibuivan/vidly/internal/platform/config"
	"github.com/taibuivan/vidly/internal/platform/middleware"
	"github.com/taibuivan/vidly/internal/platform/sec"
	"github.com/taibuivan/vidly/internal/users/account"
	"github.com/taibuivan/vidly/internal/users/auth"
	"github.com/taibuivan/vidly/internal/users/auth/authtest"
)

// # Fixtures

func newTestServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()
	return newConfiguredServer(t, deps, nil, &authtest.FakeUploader{})
}

// newConfiguredServer lets a test adjust the config and control uploads.
func newConfiguredServer(t *testing.T, deps api.HealthDependencies, adjust func(*config.Config), uploader *authtest.FakeUploader) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Environment:        "development",
		ServerPort:         "0",
		JSONBodyLimit:      16384,
		MultipartBodyLimit: 1 << 20,
	}
	if adjust != nil {
		adjust(cfg)
	}

	hasher, err := sec.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := sec.NewTokenIssuer(sec.TokenConfig{
		AccessSecret:  "server-access-secret",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "server-refresh-secret",
		RefreshTTL:    240 * time.Hour,
		Issuer:        "vidly.test",
	})
	require.NoError(t, err)

	accounts := authtest.NewMemoryAccounts()
	logger := zap.NewNop()
	uploadDir := t.TempDir()

	authService := auth.NewService(accounts, authtest.NewMemoryAttempts(), hasher, tokens, uploader,
		auth.ThrottleConfig{MaxAttempts: 5, Lockout: time.Minute}, logger)
	accountService := account.NewService(accounts, uploader, logger)

	liveness, readiness := api.NewHealthHandlers(deps, logger)
	server := api.NewServer(cfg, logger, middleware.NewRateLimiter(1000, 1000), api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, auth.CookieConfig{AccessTTL: 15 * time.Minute, RefreshTTL: 240 * time.Hour}, uploadDir),
		Account:   account.NewHandler(accountService, authService.Gate, uploadDir),
	})
	return server.Handler()
}

func registerAlice(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	for name, value := range map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"fullName": "Alice",
		"password": "abcdef12",
	} {
		require.NoError(t, form.WriteField(name, value))
	}
	part, err := form.CreateFormFile("avatar", "alice.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	request.Header.Set("Content-Type", form.FormDataContentType())
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func login(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(map[string]string{"username": "alice", "password": "abcdef12"})
	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(raw))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

// # Scenarios

/*
TestServer_RegisterLoginCurrentUser walks the whole session lifecycle through
the production middleware chain.
*/
func TestServer_RegisterLoginCurrentUser(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{})

	recorder := registerAlice(t, handler)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	assert.NotContains(t, recorder.Body.String(), "abcdef12")
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	recorder = login(t, handler)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	cookies := recorder.Result().Cookies()
	names := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		names = append(names, cookie.Name)
	}
	assert.ElementsMatch(t, []string{"accessToken", "refreshToken"}, names)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Status  int            `json:"status"`
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "alice", envelope.Data["username"])
	assert.Equal(t, "a@x.com", envelope.Data["email"])
}

func TestServer_TamperedTokenRejected(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{})
	require.Equal(t, http.StatusCreated, registerAlice(t, handler).Code)

	var body struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login(t, handler).Body.Bytes(), &body))

	token := body.Data.AccessToken
	require.NotEmpty(t, token)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	request.Header.Set("Authorization", "Bearer "+token[:len(token)-2]+"zz")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success":false`)
	assert.Contains(t, recorder.Body.String(), `"errors":[]`)
}

func TestServer_JSONBodyLimit(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{})

	payload := bytes.Repeat([]byte("a"), 20000)
	raw, _ := json.Marshal(map[string]string{"username": string(payload), "password": "abcdef12"})
	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(raw))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

/*
TestServer_ErrorDetailsHiddenInProduction fails an avatar upload with DEBUG on;
only the non-production server reports the cause.
*/
func TestServer_ErrorDetailsHiddenInProduction(t *testing.T) {
	for _, tt := range []struct {
		environment string
		showsCause  bool
	}{
		{"development", true},
		{"production", false},
	} {
		t.Run(tt.environment, func(t *testing.T) {
			uploader := &authtest.FakeUploader{}
			handler := newConfiguredServer(t, api.HealthDependencies{}, func(cfg *config.Config) {
				cfg.Environment = tt.environment
				cfg.Debug = true
			}, uploader)

			require.Equal(t, http.StatusCreated, registerAlice(t, handler).Code)
			var session struct {
				Data struct {
					AccessToken string `json:"accessToken"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(login(t, handler).Body.Bytes(), &session))

			uploader.Fail = map[string]bool{"avatars": true}

			body := &bytes.Buffer{}
			form := multipart.NewWriter(body)
			part, err := form.CreateFormFile("avatar", "new.png")
			require.NoError(t, err)
			_, err = part.Write([]byte("png-bytes"))
			require.NoError(t, err)
			require.NoError(t, form.Close())

			request := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-avatar", body)
			request.Header.Set("Content-Type", form.FormDataContentType())
			request.Header.Set("Authorization", "Bearer "+session.Data.AccessToken)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			require.Equal(t, http.StatusInternalServerError, recorder.Code, recorder.Body.String())
			if tt.showsCause {
				assert.Contains(t, recorder.Body.String(), authtest.ErrUploadFailed.Error())
			} else {
				assert.NotContains(t, recorder.Body.String(), authtest.ErrUploadFailed.Error())
				assert.NotContains(t, recorder.Body.String(), `"cause"`)
			}
		})
	}
}

// # Health

func TestServer_Health(t *testing.T) {
	handler := newTestServer(t, api.HealthDependencies{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestServer_Readiness reports 503 with per-dependency results when a check fails.
*/
func TestServer_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	handler := newTestServer(t, api.HealthDependencies{CheckDatabase: ok, CheckCache: ok})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"ready"`)

	handler = newTestServer(t, api.HealthDependencies{CheckDatabase: ok, CheckCache: down})
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "connection refused")
	assert.Contains(t, recorder.Body.String(), `"degraded"`)
}
