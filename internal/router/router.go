package router

import (
	"net/http"
	"time"

	"hirdavat/internal/handler"
	"hirdavat/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Paths served without an API key. The callback is posted by the
// customer's browser on the gateway's behalf and carries its own signature.
const (
	HealthPath   = "/health"
	CallbackPath = "/api/payments/callback"
)

// requestTimeout covers the slowest gateway round trip plus settlement.
const requestTimeout = 60 * time.Second

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Checkout *handler.CheckoutHandler
	Orders   *handler.OrderHandler
	Health   *handler.HealthHandler
}

// Options configures the middleware stack.
type Options struct {
	APIKey        string
	AllowedOrigin string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Order: RequestID -> RealIP -> Recovery -> Logging -> CORS -> APIKeyAuth
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(opts.AllowedOrigin))
	r.Use(middleware.APIKeyAuth(opts.APIKey, []string{HealthPath, CallbackPath}, logger))
	r.Use(chimw.Timeout(requestTimeout))

	r.Get(HealthPath, h.Health.Check)

	r.Route("/api", func(r chi.Router) {
		r.Post("/checkout", h.Checkout.SubmitCart)

		r.Post("/payments", h.Checkout.SubmitPayment)
		r.Post("/payments/callback", h.Checkout.Callback)
		r.Get("/payments/installments", h.Checkout.Installments)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/track/{token}", h.Orders.Track)
			r.Post("/cancel", h.Orders.Cancel)
		})
	})

	return r
}
