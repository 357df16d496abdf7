package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
)

// RegisterAdmin registers catalog management and the reservation back
// office under /v1/admin.  Writes to a cached list purge its namespace.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, r *handler.ReservationHandler, cache *middleware.ResponseCache, jwtSecret string) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	cats := cache.Invalidate(NSCategories)
	g.POST("/categories", a.CreateCategory, cats)
	g.GET("/categories/:id", a.GetCategory)
	g.PUT("/categories/:id", a.UpdateCategory, cats)
	g.DELETE("/categories/:id", a.DeleteCategory, cats)

	pms := cache.Invalidate(NSPaymentMethods)
	g.POST("/payment-methods", a.CreatePaymentMethod, pms)
	g.GET("/payment-methods/:id", a.GetPaymentMethod)
	g.PUT("/payment-methods/:id", a.UpdatePaymentMethod, pms)
	g.DELETE("/payment-methods/:id", a.DeletePaymentMethod, pms)

	g.POST("/destinations", a.CreateDestination)
	g.PUT("/destinations/:id", a.UpdateDestination)
	g.DELETE("/destinations/:id", a.DeleteDestination)

	team := cache.Invalidate(NSTeam)
	g.POST("/team", a.CreateTeamMember, team)
	g.PUT("/team/:id", a.UpdateTeamMember, team)
	g.DELETE("/team/:id", a.DeleteTeamMember, team)

	g.GET("/reservations", r.ListAll)
	g.POST("/reservations", r.CreateForUser)
}
