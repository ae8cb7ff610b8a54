package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/adsloty/adsloty/internal/handler"    // import the handlers that implement business logic
	"github.com/adsloty/adsloty/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/adsloty/adsloty/internal/model"      // import role constants
)

// RegisterWriter registers the writer dashboard routes.  Everything
// here requires a valid access token with the WRITER role.
func RegisterWriter(e *echo.Echo, h *handler.WriterHandler, jwtSecret string) {
	g := e.Group("/v1/writer")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleWriter))

	// Profile: the bookable listing shown in the marketplace.
	g.POST("/profile", h.CreateProfile)
	g.GET("/profile", h.GetProfile)
	g.PATCH("/profile", h.UpdateProfile)

	// Schedule: the writer's own availability calendar plus blackout
	// management.
	g.GET("/schedule", h.Schedule)
	g.GET("/blackouts", h.ListBlackouts)
	g.POST("/blackouts", h.AddBlackout)
	g.DELETE("/blackouts/:id", h.RemoveBlackout)

	// Review queue: paid bookings awaiting approval, plus the full
	// booking list.
	g.GET("/bookings", h.ListBookings)
	g.GET("/bookings/pending", h.PendingReview)
	g.POST("/bookings/:ref/approve", h.Approve)
	g.POST("/bookings/:ref/reject", h.Reject)
	g.POST("/bookings/:ref/published", h.MarkPublished)

	// Earnings and withdrawals.
	g.GET("/payouts/summary", h.PayoutSummary)
	g.GET("/payouts", h.ListPayouts)
	g.POST("/payouts", h.RequestPayout)
}
