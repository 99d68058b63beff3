package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/griddeck/griddeck/pkg/store"
)

// HealthChecker reports the health of the daemon's dependencies: the
// record store and the two directory roots the panel works from.
type HealthChecker struct {
	records     store.RecordStore
	installRoot string
	cacheRoot   string
	version     string
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(records store.RecordStore, installRoot, cacheRoot string) *HealthChecker {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	return &HealthChecker{
		records:     records,
		installRoot: installRoot,
		cacheRoot:   cacheRoot,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the health of a single dependency
type DependencyStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Liveness returns a simple liveness probe (always returns 200 if server is running)
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

// Readiness returns a readiness probe (checks all dependencies)
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")

	// Return 503 if unhealthy, 200 if healthy or degraded
	if status.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(status)
}

// Check performs a comprehensive health check
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus),
	}

	// Check the record store. Pins and settings are unusable without it.
	if h.records != nil {
		recordStatus := h.checkRecords(ctx)
		status.Dependencies["record_store"] = recordStatus
		if recordStatus.Status == StatusUnhealthy {
			status.Status = StatusUnhealthy
		}
	}

	// Check the install root. Loaded apps keep serving from memory when it
	// disappears, but loads and reloads will fail until it returns.
	if h.installRoot != "" {
		installStatus := checkDirectory(h.installRoot)
		status.Dependencies["install_root"] = installStatus
		if installStatus.Status != StatusHealthy && status.Status != StatusUnhealthy {
			status.Status = StatusDegraded
		}
	}

	// Check the cache root. Missing directories are recreated on the next
	// icon write, so this only degrades.
	if h.cacheRoot != "" {
		cacheStatus := checkDirectory(h.cacheRoot)
		status.Dependencies["cache_root"] = cacheStatus
		if cacheStatus.Status != StatusHealthy && status.Status != StatusUnhealthy {
			status.Status = StatusDegraded
		}
	}

	return status
}

// checkRecords pings the record store
func (h *HealthChecker) checkRecords(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{
		Status: StatusHealthy,
	}

	err := h.records.Ping(ctx)
	status.LatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
	}

	return status
}

// checkDirectory verifies a root directory exists
func checkDirectory(path string) DependencyStatus {
	info, err := os.Stat(path)
	if err != nil {
		return DependencyStatus{
			Status:  StatusDegraded,
			Message: err.Error(),
		}
	}
	if !info.IsDir() {
		return DependencyStatus{
			Status:  StatusDegraded,
			Message: path + " is not a directory",
		}
	}
	return DependencyStatus{Status: StatusHealthy}
}

// RegisterHealthRoutes registers health check endpoints
func RegisterHealthRoutes(mux *http.ServeMux, checker *HealthChecker) {
	mux.HandleFunc("/health", checker.Readiness)
	mux.HandleFunc("/health/live", checker.Liveness)
	mux.HandleFunc("/health/ready", checker.Readiness)
}
