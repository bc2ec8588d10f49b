// Package router maps the HTTP surface onto handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/trappazoid/booking-backend/internal/handler"
	"github.com/trappazoid/booking-backend/internal/middleware"
	"github.com/trappazoid/booking-backend/internal/model"
)

// RegisterRoutes registers routes that carry no middleware at all.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication lifecycle. Register, login,
// refresh and logout are open; /v1/auth/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterCatalog wires the public event catalog. cache may be nil when
// Redis is unavailable; the routes then serve uncached. The seat map is
// deliberately NOT registered here: seat state must never be served from
// cache, or expired holds would appear live past the hold window.
func RegisterCatalog(e *echo.Echo, ev *handler.EventHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/events")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("", ev.List)
	g.GET("/search", ev.Search)
	g.GET("/:id", ev.GetByID)
}

// RegisterSeats wires the seat map and the hold/release/commit flow.
// Reading the map is open to guests; the state-changing operations
// require a token and, when rate is non-nil, pass the rate limiter.
func RegisterSeats(e *echo.Echo, s *handler.SeatHandler, jwtSecret string, rate echo.MiddlewareFunc) {
	e.GET("/v1/events/:id/seats", s.QuerySeats)

	g := e.Group("/v1/seats")
	if rate != nil {
		g.Use(rate)
	}
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("/hold", s.HoldSeats)
	g.POST("/release", s.ReleaseSeats)
	g.POST("/commit", s.CommitSeats)

	e.GET("/v1/my-bookings", s.MyBookings, middleware.JWTAuth(jwtSecret))
}

// RegisterAdmin wires event creation and deletion behind the ADMIN role.
func RegisterAdmin(e *echo.Echo, ev *handler.EventHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))
	g.POST("/events", ev.Create)
	g.DELETE("/events/:id", ev.Delete)
}
