package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/adsloty/adsloty/internal/handler"    // import the handlers that implement business logic
	"github.com/adsloty/adsloty/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/adsloty/adsloty/internal/model"      // import role constants
)

// RegisterSponsor registers the sponsor routes: profile management, the
// booking wizard and the campaign dashboard.  All require the SPONSOR
// role.
func RegisterSponsor(e *echo.Echo, h *handler.SponsorHandler, jwtSecret string) {
	g := e.Group("/v1/sponsor")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleSponsor))

	// Advertiser profile.
	g.POST("/profile", h.CreateProfile)
	g.GET("/profile", h.GetProfile)
	g.PATCH("/profile", h.UpdateProfile)

	// The booking wizard.  A session walks select_week, ad_details,
	// payment and confirmation; checkout creates the booking and the
	// hosted payment.
	g.POST("/bookings/wizard", h.StartWizard)
	g.GET("/bookings/wizard/:id", h.WizardState)
	g.POST("/bookings/wizard/:id/slot", h.SelectSlot)
	g.POST("/bookings/wizard/:id/creative", h.SubmitCreative)
	g.POST("/bookings/wizard/:id/back", h.Back)
	g.POST("/bookings/wizard/:id/checkout", h.Checkout)
	g.DELETE("/bookings/wizard/:id", h.CancelWizard)

	// Campaign dashboard.  Creative edits are allowed until the writer
	// reviews the booking.
	g.GET("/bookings", h.ListCampaigns)
	g.GET("/bookings/:ref", h.GetCampaign)
	g.PATCH("/bookings/:ref/creative", h.UpdateCreative)
}
