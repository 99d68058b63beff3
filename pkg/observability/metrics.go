package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the panel daemon
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Icon pipeline metrics
	IconRequestsTotal *prometheus.CounterVec
	IconFetchDuration *prometheus.HistogramVec

	// Application registry metrics
	AppsLoaded         prometheus.Gauge
	AppLoadsTotal      *prometheus.CounterVec
	AppUninstallsTotal *prometheus.CounterVec

	// Record store metrics
	PinWritesTotal     prometheus.Counter
	SettingWritesTotal prometheus.Counter

	// Cache maintenance metrics
	SweepRunsTotal    *prometheus.CounterVec
	SweepRemovedTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "griddeck_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "griddeck_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "griddeck_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Icon pipeline metrics
		IconRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "griddeck_icon_requests_total",
				Help: "Icon fetches by rendition and how they were satisfied",
			},
			[]string{"rendition", "outcome"},
		),
		IconFetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "griddeck_icon_fetch_duration_seconds",
				Help: "Icon fetch duration in seconds, including generation on miss",
				// Memory hits land under a millisecond, cold generation can take
				// a good fraction of a second.
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"rendition"},
		),

		// Application registry metrics
		AppsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "griddeck_apps_loaded",
				Help: "Number of applications currently loaded in the registry",
			},
		),
		AppLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "griddeck_app_loads_total",
				Help: "Total number of application load attempts",
			},
			[]string{"status"},
		),
		AppUninstallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "griddeck_app_uninstalls_total",
				Help: "Total number of application uninstall attempts",
			},
			[]string{"status"},
		),

		// Record store metrics
		PinWritesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "griddeck_pin_writes_total",
				Help: "Total number of pinned-app list updates",
			},
		),
		SettingWritesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "griddeck_setting_writes_total",
				Help: "Total number of panel setting updates",
			},
		),

		// Cache maintenance metrics
		SweepRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "griddeck_cache_sweep_runs_total",
				Help: "Total number of icon cache sweep runs",
			},
			[]string{"status"},
		),
		SweepRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "griddeck_cache_sweep_removed_total",
				Help: "Total number of cache entries removed by sweeps",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.IconRequestsTotal,
		m.IconFetchDuration,
		m.AppsLoaded,
		m.AppLoadsTotal,
		m.AppUninstallsTotal,
		m.PinWritesTotal,
		m.SettingWritesTotal,
		m.SweepRunsTotal,
		m.SweepRemovedTotal,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status and size
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// Serve the request
			next.ServeHTTP(rw, r)

			// Record metrics
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)
			path := routeLabel(r)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, path).Observe(float64(rw.bytesWritten))
		})
	}
}

// routeLabel returns the mux route template when one matched. Per-app URLs
// would give the path label unbounded cardinality, so raw paths are only
// used for requests that never hit a route.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
