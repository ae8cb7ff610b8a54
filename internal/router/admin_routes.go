package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/adsloty/adsloty/internal/handler"    // import the handlers that implement business logic
	"github.com/adsloty/adsloty/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/adsloty/adsloty/internal/model"      // import role constants
)

// RegisterAdmin registers the back-office routes (ADMIN role) and the
// unauthenticated payment webhook, which authenticates deliveries by
// HMAC signature instead of a session.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, wh *handler.WebhookHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	// Payout queue.
	g.GET("/payouts", a.ListPayouts)
	g.PATCH("/payouts/:id", a.UpdatePayoutStatus)

	// Approved ads due to run soon, for chasing publication.
	g.GET("/bookings/upcoming", a.UpcomingApproved)

	// Provider-side order inspection for reconciling disputes.
	g.GET("/orders/:order_id", a.InspectOrder)

	// Maintenance sweeps, intended to be hit by a scheduler.
	g.POST("/maintenance/tokens", a.CleanupTokens)
	g.POST("/maintenance/bookings", a.ExpireStaleBookings)

	// Payment provider callbacks.  Signature-verified in the handler.
	e.POST("/v1/webhooks/payment", wh.Receive)
}
