package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cinebook/cinebook/internal/middleware"
)

// registerAdmin exposes the catalog write endpoints, ADMIN only.
func registerAdmin(e *echo.Echo, d Deps) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(d.Cfg.JWTSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.POST("/cities", d.Cities.Create)
	g.POST("/genres", d.Genres.Create)
	g.POST("/languages", d.Languages.Create)

	g.POST("/movies", d.Movies.Create)
	g.POST("/cinemas", d.Cinemas.Create)
	g.PATCH("/cinemas/:id", d.Cinemas.Patch)
	g.POST("/slots", d.Slots.Create)
	g.PATCH("/slots/:id", d.Slots.Update)
}
