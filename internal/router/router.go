package router // package router defines how HTTP routes are registered for the console

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/nilemovies/admin-console/internal/config"
	"github.com/nilemovies/admin-console/internal/handler"
	"github.com/nilemovies/admin-console/internal/middleware"
	"github.com/nilemovies/admin-console/internal/session"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints.  Login lives outside the
// guarded group and carries its own rate limiter; logout and me require a
// session like every other console route and are wired by
// RegisterConsole.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rdb *redis.Client) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	e.POST("/v1/auth/login", a.Login, rl)
}

// RegisterConsole wires every guarded console route.  The group applies,
// in order: the session guard, the admin role check, and the forced-401
// sweep that logs the administrator out when the upstream API rejects the
// stored token.  Upstream reads additionally pass through the response
// cache.
func RegisterConsole(
	e *echo.Echo,
	a *handler.AuthHandler,
	m *handler.MovieHandler,
	d *handler.DashboardHandler,
	u *handler.UserHandler,
	store *session.Store,
	codec *session.CookieCodec,
	rdb *redis.Client,
) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	g := e.Group("/v1")
	g.Use(middleware.SessionAuth(store, codec))
	g.Use(middleware.RequireAdmin())
	g.Use(middleware.Upstream401Sweep(store))

	g.GET("/me", a.Me)
	g.POST("/logout", a.Logout)

	g.GET("/movies/meta", m.Meta)
	g.GET("/movies", m.List, cache)
	g.GET("/movies/:id", m.Get, cache)
	g.POST("/movies", m.Create)
	g.PUT("/movies/:id", m.Update)
	g.DELETE("/movies/:id", m.Delete)
	g.PATCH("/movies/:id/toggle-status", m.Toggle)

	g.GET("/dashboard/stats", d.Stats, cache)

	g.GET("/users", u.List)
	g.GET("/users/:id", u.Get)
	g.PUT("/users/:id", u.Update)
	g.DELETE("/users/:id", u.Delete)
}
