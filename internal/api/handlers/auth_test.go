package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nitty-hq/server/internal/auth"
	"github.com/nitty-hq/server/internal/domain/users"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *users.Service) {
	t.Helper()
	service := users.NewService(newMemUserRepo(), zerolog.Nop())
	tokens := auth.NewTokenManager("test-secret", time.Hour, "nitty")
	return NewAuthHandler(service, tokens, "test"), service
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler(res, req)
	return res
}

func TestSignup(t *testing.T) {
	handler, _ := newAuthHandler(t)

	res := postJSON(t, handler.Signup, "/api/v1/auth/signup", map[string]any{
		"email":     "Ada@Example.com",
		"password":  "correct horse",
		"full_name": "Ada Lovelace",
	})

	require.Equal(t, http.StatusCreated, res.Code)

	var body userResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, "ada@example.com", body.Email)
	require.Equal(t, "Ada Lovelace", body.FullName)
	require.True(t, body.IsActive)
	require.False(t, body.IsSuperuser)
	require.NotEmpty(t, body.ID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	handler, _ := newAuthHandler(t)

	payload := map[string]any{"email": "ada@example.com", "password": "correct horse"}
	res := postJSON(t, handler.Signup, "/api/v1/auth/signup", payload)
	require.Equal(t, http.StatusCreated, res.Code)

	res = postJSON(t, handler.Signup, "/api/v1/auth/signup", payload)
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
}

func TestSignupValidation(t *testing.T) {
	handler, _ := newAuthHandler(t)

	res := postJSON(t, handler.Signup, "/api/v1/auth/signup", map[string]any{
		"email":    "not-an-email",
		"password": "short",
	})

	require.Equal(t, http.StatusBadRequest, res.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Contains(t, body.Errors, "email")
	require.Contains(t, body.Errors, "password")
}

func TestLogin(t *testing.T) {
	handler, service := newAuthHandler(t)

	user, err := service.Register(context.Background(), users.RegisterParams{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	res := postJSON(t, handler.Login, "/api/v1/auth/login", map[string]any{
		"email":    "ada@example.com",
		"password": "correct horse",
	})

	require.Equal(t, http.StatusOK, res.Code)

	var body tokenResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, "bearer", body.TokenType)

	subject, err := handler.Tokens.Validate(body.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), subject)
}

func TestLoginWrongPassword(t *testing.T) {
	handler, service := newAuthHandler(t)

	_, err := service.Register(context.Background(), users.RegisterParams{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	res := postJSON(t, handler.Login, "/api/v1/auth/login", map[string]any{
		"email":    "ada@example.com",
		"password": "battery staple",
	})

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	handler, _ := newAuthHandler(t)

	res := postJSON(t, handler.Login, "/api/v1/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "whatever!",
	})

	require.Equal(t, http.StatusUnauthorized, res.Code)
}
