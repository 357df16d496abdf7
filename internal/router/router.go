// Package router registers the HTTP routes of the API on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth         *handler.AuthHandler
	Reset        *handler.PasswordResetHandler
	Public       *handler.PublicHandler
	Admin        *handler.AdminHandler
	Reservations *handler.ReservationHandler
	Profiles     *handler.ProfileHandler
	DB           handler.Pinger
}

// Middlewares are built by main from the Redis configuration.  Nil entries
// are skipped.
type Middlewares struct {
	Cache     *middleware.ResponseCache
	RateLimit echo.MiddlewareFunc
	AuthLimit echo.MiddlewareFunc
}

// Register mounts every route.
func Register(e *echo.Echo, h Handlers, mw Middlewares, jwtSecret string) {
	RegisterRoutes(e, h.DB)
	RegisterAuth(e, h.Auth, h.Reset, mw.AuthLimit, jwtSecret)
	RegisterPublic(e, h.Public, mw.Cache, mw.RateLimit)
	RegisterCustomer(e, h.Reservations, h.Profiles, mw.RateLimit, jwtSecret)
	RegisterAdmin(e, h.Admin, h.Reservations, mw.Cache, jwtSecret)
}

// RegisterRoutes registers the probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterAuth registers account and session routes.  Register, login and
// the password reset pair sit behind the stricter limiter.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, r *handler.PasswordResetHandler, limit echo.MiddlewareFunc, jwtSecret string) {
	g := e.Group("/v1/auth")
	limited := with(limit)
	g.POST("/register", a.Register, limited...)
	g.POST("/login", a.Login, limited...)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
	g.POST("/password-reset", r.Request, limited...)
	g.POST("/password-reset-confirm/:uidb64/:token", r.Confirm, limited...)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// with drops nil middleware.
func with(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
