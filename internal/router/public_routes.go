package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
)

// Cache namespaces of the public lookup lists.
const (
	NSCategories     = "categories"
	NSPaymentMethods = "payment-methods"
	NSTeam           = "team"
)

// RegisterPublic registers the browse endpoints.  Only the small lookup
// lists are cached; destination stock changes with every booking.  A nil
// cache disables caching.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache *middleware.ResponseCache, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", with(limit)...)
	g.GET("/categories", p.ListCategories, cache.Middleware(NSCategories))
	g.GET("/payment-methods", p.ListPaymentMethods, cache.Middleware(NSPaymentMethods))
	g.GET("/about", p.About, cache.Middleware(NSTeam))
	g.GET("/destinations", p.SearchDestinations)
	g.GET("/destinations/:id", p.GetDestination)
}
