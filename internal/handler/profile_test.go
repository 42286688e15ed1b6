package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patchProfile(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/v1/profile", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))

	// The allow-list rejects before any repository call, so a nil repo is
	// safe for these cases.
	h := NewProfileHandler(nil)
	require.NoError(t, h.Patch(c))
	return rec
}

func TestProfilePatchRejectsUnknownField(t *testing.T) {
	rec := patchProfile(t, `{"email":"new@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "this field is not allowed")
	assert.Contains(t, rec.Body.String(), `"field":"email"`)
}

func TestProfilePatchRejectsRoleChange(t *testing.T) {
	rec := patchProfile(t, `{"name":"ok","role":"ADMIN"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"role"`)
}

func TestProfilePatchRejectsEmptyBody(t *testing.T) {
	rec := patchProfile(t, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no fields to update")
}

func TestProfilePatchRejectsInvalidJSON(t *testing.T) {
	rec := patchProfile(t, `not-json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
