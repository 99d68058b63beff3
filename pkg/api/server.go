package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/griddeck/griddeck/pkg/assets"
	"github.com/griddeck/griddeck/pkg/middleware"
	"github.com/griddeck/griddeck/pkg/observability"
	"github.com/griddeck/griddeck/pkg/pins"
	"github.com/griddeck/griddeck/pkg/plugins"
	"github.com/griddeck/griddeck/pkg/store"
)

// Options wires the server's collaborators.
type Options struct {
	Registry *plugins.Registry
	Icons    *assets.Cache
	Pins     *pins.Service
	Records  store.RecordStore
	Logger   *logrus.Logger

	// Metrics and OTelMetrics are optional; nil disables recording.
	Metrics     *observability.Metrics
	OTelMetrics *observability.OTelMetrics

	// IconRateRPS and IconRateBurst bound icon fetches per client.
	// Non-positive values fall back to the middleware defaults.
	IconRateRPS   int
	IconRateBurst int

	// Tracing wraps the handler chain in otelhttp spans.
	Tracing bool
}

// Server is the panel's HTTP API.
type Server struct {
	registry    *plugins.Registry
	icons       *assets.Cache
	pins        *pins.Service
	records     store.RecordStore
	metrics     *observability.Metrics
	otelMetrics *observability.OTelMetrics
	log         *logrus.Logger
	router      *mux.Router
	handler     http.Handler
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		registry:    opts.Registry,
		icons:       opts.Icons,
		pins:        opts.Pins,
		records:     opts.Records,
		metrics:     opts.Metrics,
		otelMetrics: opts.OTelMetrics,
		log:         log,
		router:      mux.NewRouter(),
	}

	s.setupRoutes(opts)
	s.handler = s.buildHandler(opts)
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(opts Options) {
	// Route-aware middleware must run inside mux so the path label is the
	// route template, not the raw URL.
	if opts.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(opts.Metrics))
	}

	// Application registry
	s.router.HandleFunc("/api/v1/applications", s.listApplications).Methods("GET")
	s.router.HandleFunc("/api/v1/applications/{appID}/load", s.loadApplication).Methods("POST")
	s.router.HandleFunc("/api/v1/applications/{appID}", s.uninstallApplication).Methods("DELETE")

	// Icon renditions, rate limited per client
	iconLimiter := middleware.NewRateLimitMiddleware(
		middleware.IconRateLimitConfig(opts.IconRateRPS, opts.IconRateBurst))
	s.router.Handle("/api/v1/applications/{appID}/icons/{rendition}",
		iconLimiter.Handler(http.HandlerFunc(s.getIcon))).Methods("GET")

	// Per-user pins
	s.router.HandleFunc("/api/v1/users/{username}/pins", s.getPins).Methods("GET")
	s.router.HandleFunc("/api/v1/users/{username}/pins", s.putPins).Methods("PUT")

	// Panel settings
	s.router.HandleFunc("/api/v1/panel/settings", s.getSettings).Methods("GET")
	s.router.HandleFunc("/api/v1/panel/settings", s.putSettings).Methods("PUT")
}

// buildHandler wraps the router in the middleware chain. Request IDs come
// first so every later layer sees them; recovery sits inside logging so a
// panicked request still leaves an access log line.
func (s *Server) buildHandler(opts Options) http.Handler {
	var h http.Handler = s.router
	h = middleware.RecoveryMiddleware(s.log)(h)
	h = middleware.LoggingMiddleware(s.log)(h)
	if opts.Tracing {
		h = otelhttp.NewHandler(h, "griddeck.api")
	}
	h = middleware.RequestIDMiddleware(h)
	return h
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// recordIconFetch updates the icon pipeline metrics when they are wired.
func (s *Server) recordIconFetch(ctx context.Context, rendition string, outcome assets.Outcome, dur time.Duration) {
	if s.metrics != nil {
		s.metrics.IconRequestsTotal.WithLabelValues(rendition, string(outcome)).Inc()
		s.metrics.IconFetchDuration.WithLabelValues(rendition).Observe(dur.Seconds())
	}
	s.otelMetrics.RecordIconFetch(ctx, rendition, string(outcome), dur)
}

// recordAppLoad updates registry metrics after a load attempt.
func (s *Server) recordAppLoad(ctx context.Context, status string) {
	if s.metrics != nil {
		s.metrics.AppLoadsTotal.WithLabelValues(status).Inc()
		s.metrics.AppsLoaded.Set(float64(s.registry.Len()))
	}
	s.otelMetrics.RecordAppLoad(ctx, status)
	if status == "success" {
		s.otelMetrics.AddAppsLoaded(ctx, 1)
	}
}

// recordAppUninstall updates registry metrics after an uninstall attempt.
func (s *Server) recordAppUninstall(ctx context.Context, status string) {
	if s.metrics != nil {
		s.metrics.AppUninstallsTotal.WithLabelValues(status).Inc()
		s.metrics.AppsLoaded.Set(float64(s.registry.Len()))
	}
	s.otelMetrics.RecordAppUninstall(ctx, status)
	if status == "success" {
		s.otelMetrics.AddAppsLoaded(ctx, -1)
	}
}
