package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/health"
	"github.com/SofisRestaurant/sofisrestaurant-enterprise-sub001/pkg/middleware"
)

// NewRouter assembles the HTTP router with the standard middleware stack.
func NewRouter(h *CheckoutHandler, healthHandler *health.Handler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.PrometheusMetrics("checkout"))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.Checkout)
			r.Get("/{id}", h.GetSession)
			r.Post("/{id}/complete", h.CompleteSession)
			r.Post("/{id}/expire", h.ExpireSession)
		})
		r.Post("/menu/items/{id}/price", h.PriceItem)
	})

	return r
}
