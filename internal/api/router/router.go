package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/costwatch/costwatch/internal/api/handlers"
	"github.com/costwatch/costwatch/internal/api/middleware"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/metrics"
)

// Config holds router configuration
type Config struct {
	Logger           *logger.Logger
	HealthHandler    *handlers.HealthHandler
	CostHandler      *handlers.CostHandler
	DetectionHandler *handlers.DetectionHandler
	RateLimitPerSec  float64
	RateLimitBurst   int
}

// New creates a new router with all routes configured
func New(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.DefaultCORS())
	r.Use(metrics.Middleware)

	if cfg.RateLimitPerSec > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
	}

	r.Get("/health", cfg.HealthHandler.Healthz)
	r.Get("/healthz", cfg.HealthHandler.Healthz)
	r.Get("/readyz", cfg.HealthHandler.Readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/providers", cfg.CostHandler.List)

		r.Route("/costs", func(r chi.Router) {
			r.Get("/", cfg.CostHandler.List)
			r.Post("/", cfg.CostHandler.Ingest)
			r.Post("/sample", cfg.CostHandler.IngestSample)
			r.Get("/{provider}", cfg.CostHandler.Get)
			r.Put("/{provider}", cfg.CostHandler.Update)
		})

		r.Route("/detect", func(r chi.Router) {
			r.Post("/", cfg.DetectionHandler.DetectAll)
			r.Post("/{provider}", cfg.DetectionHandler.Detect)
		})

		r.Route("/anomalies", func(r chi.Router) {
			r.Get("/", cfg.DetectionHandler.List)
			r.Get("/summary", cfg.DetectionHandler.Summary)
		})
	})

	return r
}
