package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cinebook/cinebook/internal/middleware"
)

// registerCustomer exposes the endpoints any authenticated user can call:
// their own profile and their own bookings.
func registerCustomer(e *echo.Echo, d Deps) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(d.Cfg.JWTSecret))
	g.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))

	g.GET("/profile", d.Profile.Get)
	g.PATCH("/profile", d.Profile.Patch)

	g.POST("/bookings", d.Bookings.Create)
	g.GET("/bookings", d.Bookings.List)
	g.PATCH("/bookings/:id", d.Bookings.Cancel)
}
