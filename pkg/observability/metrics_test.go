package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	t.Run("creates and registers all metrics", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		if metrics == nil {
			t.Fatal("NewMetrics returned nil")
		}

		// Verify HTTP metrics are initialized
		if metrics.HTTPRequestsTotal == nil {
			t.Error("HTTPRequestsTotal is nil")
		}
		if metrics.HTTPRequestDuration == nil {
			t.Error("HTTPRequestDuration is nil")
		}
		if metrics.HTTPResponseSize == nil {
			t.Error("HTTPResponseSize is nil")
		}

		// Verify icon metrics are initialized
		if metrics.IconRequestsTotal == nil {
			t.Error("IconRequestsTotal is nil")
		}
		if metrics.IconFetchDuration == nil {
			t.Error("IconFetchDuration is nil")
		}

		// Verify registry metrics are initialized
		if metrics.AppsLoaded == nil {
			t.Error("AppsLoaded is nil")
		}
		if metrics.AppLoadsTotal == nil {
			t.Error("AppLoadsTotal is nil")
		}
		if metrics.AppUninstallsTotal == nil {
			t.Error("AppUninstallsTotal is nil")
		}

		// Verify record store metrics are initialized
		if metrics.PinWritesTotal == nil {
			t.Error("PinWritesTotal is nil")
		}
		if metrics.SettingWritesTotal == nil {
			t.Error("SettingWritesTotal is nil")
		}

		// Verify sweep metrics are initialized
		if metrics.SweepRunsTotal == nil {
			t.Error("SweepRunsTotal is nil")
		}
		if metrics.SweepRemovedTotal == nil {
			t.Error("SweepRemovedTotal is nil")
		}
	})

	t.Run("metrics appear in the registry", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		metrics.AppsLoaded.Set(3)
		metrics.IconRequestsTotal.WithLabelValues("small", "memory").Inc()

		families, err := registry.Gather()
		if err != nil {
			t.Fatalf("Gather failed: %v", err)
		}

		names := make(map[string]bool)
		for _, mf := range families {
			names[mf.GetName()] = true
		}
		if !names["griddeck_apps_loaded"] {
			t.Error("griddeck_apps_loaded not gathered")
		}
		if !names["griddeck_icon_requests_total"] {
			t.Error("griddeck_icon_requests_total not gathered")
		}
	})
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	t.Run("records request counts and durations", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		handler := HTTPMetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, "ok")
		}))

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
		}

		got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/ping", "200"))
		if got != 3 {
			t.Errorf("Expected 3 requests recorded, got %v", got)
		}
	})

	t.Run("records error status codes", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		handler := HTTPMetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		req := httptest.NewRequest(http.MethodGet, "/missing", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/missing", "404"))
		if got != 1 {
			t.Errorf("Expected 1 request recorded, got %v", got)
		}
	})

	t.Run("uses route template for the path label", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		router := mux.NewRouter()
		router.HandleFunc("/api/v1/applications/{appID}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		router.Use(HTTPMetricsMiddleware(metrics))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/com.example.files", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/applications/{appID}", "200"))
		if got != 1 {
			t.Errorf("Expected the route template label, got %v recorded against it", got)
		}
	})
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	metrics.AppsLoaded.Set(2)

	serveMux := http.NewServeMux()
	RegisterMetricsEndpoint(serveMux, registry)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	serveMux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "griddeck_apps_loaded 2") {
		t.Errorf("Expected griddeck_apps_loaded in scrape output, got:\n%s", body)
	}
}
