package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
)

// RegisterCustomer registers the routes of a signed-in traveller.  Admins may
// use them too.
func RegisterCustomer(e *echo.Echo, r *handler.ReservationHandler, p *handler.ProfileHandler, limit echo.MiddlewareFunc, jwtSecret string) {
	mws := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	}, with(limit)...)
	g := e.Group("/v1", mws...)

	g.POST("/reservations", r.Create)
	g.GET("/reservations/:id", r.GetMine)
	g.GET("/my-reservations", r.ListMine)

	g.GET("/me/profile", p.Get)
	g.PUT("/me/profile", p.Update)
}
