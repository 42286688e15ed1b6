package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/cinebook/cinebook/internal/handler"
)

func newRegisteredEcho() *echo.Echo {
	e := echo.New()
	Register(e, Deps{
		Auth:      &handler.AuthHandler{},
		Profile:   &handler.ProfileHandler{},
		Cities:    &handler.CatalogHandler{},
		Genres:    &handler.CatalogHandler{},
		Languages: &handler.CatalogHandler{},
		Cinemas:   &handler.CinemaHandler{},
		Movies:    &handler.MovieHandler{},
		Slots:     &handler.SlotHandler{},
		Bookings:  &handler.BookingHandler{},
	})
	return e
}

func TestHealthz(t *testing.T) {
	e := newRegisteredEcho()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownRouteReturnsJSONNotFound(t *testing.T) {
	e := newRegisteredEcho()
	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "The requested resource was not found")
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	e := newRegisteredEcho()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
