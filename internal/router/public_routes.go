package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"            // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // echo's built-in middleware (CORS)

	"github.com/adsloty/adsloty/internal/handler" // import the handlers that implement business logic
)

// RegisterPublic registers the unauthenticated marketplace and widget
// endpoints.  These are the highest-traffic routes, so the Redis
// response cache and the token-bucket rate limiter are applied here
// when Redis is available (both are nil-safe pass-throughs otherwise).
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, w *handler.WidgetHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mws...)

	// Marketplace browse: filterable, sortable, paginated listings.
	g.GET("/newsletters", b.ListNewsletters)
	// Listing detail with the availability calendar for the next weeks.
	g.GET("/newsletters/:id", b.GetNewsletter)

	// Embeddable widget API.  CORS-open so writers can call it from
	// their own sites.
	wg := e.Group("/v1/widget", append([]echo.MiddlewareFunc{echomw.CORS()}, mws...)...)
	wg.GET("/:writer_id", w.Info)
	wg.GET("/:writer_id/availability", w.Availability)
	wg.GET("/:writer_id/slots/:date", w.CheckSlot)
	wg.GET("/:writer_id/embed", w.Embed)
}
