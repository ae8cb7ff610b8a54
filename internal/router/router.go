package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/adsloty/adsloty/internal/handler"    // import the handlers that implement business logic
	"github.com/adsloty/adsloty/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/adsloty/adsloty/internal/model"      // import role constants
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring probe this endpoint to verify the
	// service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, n *handler.NotificationHandler, jwtSecret string) {
	// Operations that do not require an existing session: register,
	// login, token refresh.  Each handler generates or exchanges tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access only issues a
	// new access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh token in the body (or a bearer token)
	// and invalidates the session.  No JWT middleware so an expired
	// access token can still end its session.
	g.POST("/logout", a.Logout)

	// Routes below require a valid access token.  Every signed-in role
	// may call them.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleWriter, model.RoleSponsor, model.RoleAdmin))
	auth.GET("/me", a.Me)
	// The transient notification slot fed by the event consumer.
	auth.GET("/notifications/current", n.Current)
	auth.DELETE("/notifications/current", n.Dismiss)
}
