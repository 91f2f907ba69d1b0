package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/telvora/customer-portal/internal/handler"
	"github.com/telvora/customer-portal/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Credential operations live under /v1/auth
// behind the rate limiter; protected endpoints live under /v1 behind
// JWT validation and the role guard.
//
// Logout is the one credential endpoint that also requires a Bearer
// access token: revoking a session is an action of an authenticated
// caller, while the refresh token in the body names which session dies.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/validate", a.Validate)
	g.POST("/logout", a.Logout, middleware.JWTAuth(jwtSecret))
	g.POST("/logout-all", a.LogoutAll, middleware.JWTAuth(jwtSecret))

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("Customer", "Admin"))
	auth.GET("/me", a.Me)
	auth.GET("/profile", p.Get)
	auth.PUT("/profile", p.Update)
}
