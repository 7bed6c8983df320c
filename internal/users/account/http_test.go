// Copyright (c) 2026 Vidly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidly/internal/users/account"
	"github.com/taibuivan/vidly/internal/users/auth"
)

func newRouter(t *testing.T, f *fixture) http.Handler {
	t.Helper()
	router := chi.NewRouter()
	account.NewHandler(f.service, f.auth.Gate, t.TempDir()).Mount(router)
	return router
}

func (f *fixture) accessToken(t *testing.T) string {
	t.Helper()
	session, err := f.auth.Login(context.Background(), auth.LoginInput{Username: "alice", Password: "abcdef12"})
	require.NoError(t, err)
	return session.AccessToken
}

func imageRequest(t *testing.T, target, field, token string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	if field != "" {
		part, err := form.CreateFormFile(field, "pic.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())

	request := httptest.NewRequest(http.MethodPatch, target, body)
	request.Header.Set("Content-Type", form.FormDataContentType())
	request.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	return request
}

func data(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	payload, _ := body["data"].(map[string]any)
	return payload
}

/*
TestHTTP_CurrentUser reads the gate-resolved account; the body never exposes secrets.
*/
func TestHTTP_CurrentUser(t *testing.T) {
	f := newFixture(t)
	router := newRouter(t, f)
	f.register(t, "alice", "a@x.com")
	token := f.accessToken(t)

	request := httptest.NewRequest(http.MethodGet, "/current-user", nil)
	request.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	user := data(t, recorder)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, recorder.Body.String(), "password")
	assert.NotContains(t, recorder.Body.String(), "refreshToken")

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/current-user", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHTTP_UpdateAccount(t *testing.T) {
	f := newFixture(t)
	router := newRouter(t, f)
	f.register(t, "alice", "a@x.com")
	token := f.accessToken(t)

	for _, method := range []string{http.MethodPatch, http.MethodPost} {
		raw, _ := json.Marshal(map[string]string{"fullName": "Alice " + method, "email": "alice@new.com"})
		request := httptest.NewRequest(method, "/update-account", bytes.NewReader(raw))
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
		assert.Equal(t, "Alice "+method, data(t, recorder)["fullName"])
		assert.Equal(t, "alice@new.com", data(t, recorder)["email"])
	}

	request := httptest.NewRequest(http.MethodPatch, "/update-account", bytes.NewReader([]byte(`{"fullName":"x"}`)))
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHTTP_UpdateImages(t *testing.T) {
	f := newFixture(t)
	router := newRouter(t, f)
	f.register(t, "alice", "a@x.com")
	token := f.accessToken(t)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, imageRequest(t, "/update-avatar", auth.FieldAvatar, token))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, "https://cdn.test/avatars/pic.png", data(t, recorder)["avatar"])

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, imageRequest(t, "/update-cover-image", auth.FieldCoverImage, token))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, "https://cdn.test/covers/pic.png", data(t, recorder)["coverImage"])

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, imageRequest(t, "/update-avatar", "", token))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, imageRequest(t, "/update-avatar", auth.FieldAvatar, "garbage"))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
