package http

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"

	"mediapulse/internal/config"
	"mediapulse/internal/infrastructure"
	custommiddleware "mediapulse/internal/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Dashboard *DashboardHandler
	API       *APIHandler
	Health    *HealthHandler
	Registry  *prometheus.Registry
	RateLimit config.RateLimitConfig
	Logger    *slog.Logger
}

// NewRouter assembles the full route table behind the middleware chain.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(custommiddleware.SecurityHeaders)
	r.Use(custommiddleware.StructuredLogger(deps.Logger))
	r.Use(custommiddleware.Recoverer(deps.Logger))
	r.Use(custommiddleware.Timeout(60 * time.Second))
	if deps.RateLimit.Enabled {
		r.Use(custommiddleware.RateLimiter(deps.RateLimit.RPS, deps.RateLimit.Burst))
	}

	r.Get("/", deps.Dashboard.Index)
	r.Post("/analyze", deps.Dashboard.Analyze)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/analyze", deps.API.Analyze)
		r.Get("/health", deps.Health.HealthCheck)
	})

	r.Method("GET", "/metrics", infrastructure.MetricsHandler(deps.Registry))

	return r
}
