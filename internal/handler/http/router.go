package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chageun/carpick/internal/service"
	"github.com/chageun/carpick/pkg/health"
	"github.com/chageun/carpick/pkg/middleware"
)

// ServiceName labels HTTP metrics and traces.
const ServiceName = "carpick"

// RouterConfig holds the transport settings of the HTTP API.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	RequestTimeout    time.Duration
	RateLimitPerMin   int
	LookupCacheMaxAge time.Duration
	PprofAllowedCIDRs []string
}

// Services groups the application services exposed over HTTP.
type Services struct {
	Catalog    *service.CatalogService
	Reviews    *service.ReviewService
	Statistics *service.StatisticsService
	Sessions   *service.SessionService
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(svcs Services, cfg RouterConfig, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.CORS(cfg.CORS))

	// Health, metrics and profiling stay outside the rate limit and timeout.
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	catalogHandler := NewCatalogHandler(svcs.Catalog, logger)
	reviewHandler := NewReviewHandler(svcs.Reviews, logger)
	statisticsHandler := NewStatisticsHandler(svcs.Statistics, logger)
	sessionHandler := NewSessionHandler(svcs.Sessions, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(cfg.RateLimitPerMin))
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}

		r.Get("/catalog", catalogHandler.Browse)
		r.Get("/vehicles/{name}", catalogHandler.GetVehicle)
		r.With(middleware.CacheControl(cfg.LookupCacheMaxAge)).Get("/filters", catalogHandler.FilterOptions)

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewHandler.ListReviews)
			r.Get("/{name}", reviewHandler.ExpandReviews)
			r.Get("/{name}/comments", reviewHandler.ListComments)
		})

		r.Get("/statistics", statisticsHandler.GetStatistics)

		r.Route("/sessions", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Post("/", sessionHandler.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(middleware.SessionFromPath("id", logger))
				r.Get("/", sessionHandler.GetSession)
				r.Post("/reset", sessionHandler.ResetSession)
				r.Post("/events", sessionHandler.PostEvent)
				r.Get("/recommendation", sessionHandler.GetRecommendation)
				r.Get("/history", sessionHandler.GetHistory)
			})
		})
	})

	return r
}
