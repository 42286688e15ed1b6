// Package router wires handlers, middleware and route groups onto the Echo
// instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/cinebook/internal/config"
	"github.com/cinebook/cinebook/internal/handler"
)

// Deps carries everything the route registrations need.  Cache and
// RateLimit are prebuilt middleware; either may be a pass-through when the
// backing Redis is absent.
type Deps struct {
	Cfg       config.Config
	Auth      *handler.AuthHandler
	Profile   *handler.ProfileHandler
	Cities    *handler.CatalogHandler
	Genres    *handler.CatalogHandler
	Languages *handler.CatalogHandler
	Cinemas   *handler.CinemaHandler
	Movies    *handler.MovieHandler
	Slots     *handler.SlotHandler
	Bookings  *handler.BookingHandler
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// Register sets up every route of the API on e.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "The requested resource was not found"})
	})

	registerAuth(e, d)
	registerPublic(e, d)
	registerCustomer(e, d)
	registerAdmin(e, d)
}

func registerAuth(e *echo.Echo, d Deps) {
	g := e.Group("/v1/auth")
	g.POST("/signup", d.Auth.Signup)
	g.POST("/login", d.Auth.Login)
	g.POST("/refresh", d.Auth.Refresh)
	g.POST("/logout", d.Auth.Logout)
}
