// Package router wires the HTTP surface: public browse and callback
// endpoints, and the JWT-protected booking and payment groups.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Health  *handler.HealthHandler
	Event   *handler.EventHandler
	Booking *handler.BookingHandler
	Payment *handler.PaymentHandler
}

// Register mounts all routes on e.  rdb may be nil, which disables the
// response cache and the rate limiter but changes nothing else.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", h.Health.Health)

	// Public browse endpoints sit behind the Redis response cache so
	// seat-map polling before popular on-sales does not hammer MySQL.
	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	e.GET("/v1/events/:id", h.Event.GetEvent, cache)
	e.GET("/v1/events/:id/seats", h.Event.ListEventSeats, cache)

	// The gateway reports payment outcomes here; it carries no user
	// token, only the transaction reference.
	e.POST("/v1/payments/callback", h.Payment.PaymentCallback)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	auth.POST("/bookings", h.Booking.CreateBooking)
	auth.GET("/bookings", h.Booking.ListBookings)
	auth.GET("/bookings/:id", h.Booking.GetBooking)
	auth.DELETE("/bookings/:id", h.Booking.CancelBooking)

	auth.POST("/bookings/:id/payment", h.Payment.InitiatePayment)
	auth.GET("/payments", h.Payment.ListPayments)
}
