package router

import "github.com/labstack/echo/v4"

// registerPublic exposes the browse endpoints.  No authentication, but the
// whole group sits behind the rate limiter and the response cache so the
// heavy read traffic stays off MySQL.
func registerPublic(e *echo.Echo, d Deps) {
	g := e.Group("/v1")
	if d.RateLimit != nil {
		g.Use(d.RateLimit)
	}
	if d.Cache != nil {
		g.Use(d.Cache)
	}

	g.GET("/cities", d.Cities.List)
	g.GET("/genres", d.Genres.List)
	g.GET("/languages", d.Languages.List)

	g.GET("/movies", d.Movies.List)
	g.GET("/movies/:id", d.Movies.Get)
	g.GET("/cinemas", d.Cinemas.List)
	g.GET("/cinemas/:id", d.Cinemas.Get)
	g.GET("/slots/:id", d.Slots.Get)
}
