package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinebook/cinebook/internal/config"
)

func postAuth(t *testing.T, path, body string, fn echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, fn(e.NewContext(req, rec)))
	return rec
}

// These cases fail in the validation layer before any repository call, so
// nil repos are safe.
func newAuthHandler() *AuthHandler {
	return NewAuthHandler(config.Config{JWTSecret: "test-secret"}, nil, nil)
}

func TestSignupRejectsShortPassword(t *testing.T) {
	h := newAuthHandler()
	rec := postAuth(t, "/v1/auth/signup", `{"name":"a","email":"a@b.c","password":"short"}`, h.Signup)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 8 characters")
}

func TestSignupRejectsMissingEmail(t *testing.T) {
	h := newAuthHandler()
	rec := postAuth(t, "/v1/auth/signup", `{"name":"a","password":"longenough"}`, h.Signup)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRejectsMissingCredentials(t *testing.T) {
	h := newAuthHandler()
	rec := postAuth(t, "/v1/auth/login", `{"email":"a@b.c"}`, h.Login)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRejectsMissingToken(t *testing.T) {
	h := newAuthHandler()
	rec := postAuth(t, "/v1/auth/refresh", `{}`, h.Refresh)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh_token required")
}

func TestLogoutRejectsMissingToken(t *testing.T) {
	h := newAuthHandler()
	rec := postAuth(t, "/v1/auth/logout", `{}`, h.Logout)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh_token required")
}
