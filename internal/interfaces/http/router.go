// Package http assembles the API server: route tree, middleware chain and
// the http.Server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/BillWilson/pat-checker/internal/config"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/prometheus"
	"github.com/BillWilson/pat-checker/internal/interfaces/http/handlers"
	"github.com/BillWilson/pat-checker/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware dependencies of the
// route tree.  Nil handlers leave their routes unregistered.
type RouterConfig struct {
	SearchHandler *handlers.SearchHandler
	ReportHandler *handlers.ReportHandler
	HealthHandler *handlers.HealthHandler

	CORS    config.CORSConfig
	Logging middleware.LoggingConfig

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter builds the route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging(logger, cfg.Logging))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.CORS(cfg.CORS))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	if h := cfg.HealthHandler; h != nil {
		r.Get("/healthz", h.Liveness)
		r.Get("/readyz", h.Readiness)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = config.DefaultMetricsPath
		}
		r.Method(http.MethodGet, path, cfg.MetricsCollector.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if h := cfg.SearchHandler; h != nil {
			api.Get("/search", h.Search)
		}
		if h := cfg.ReportHandler; h != nil {
			api.Get("/list", h.List)
		}
	})

	return r
}
