// Package observability provides metrics, health checks, tracing, and
// graceful shutdown for the panel daemon.
//
// # Overview
//
// The package bundles four concerns:
//
//   - Prometheus metrics for HTTP traffic, the icon pipeline, the
//     application registry, the record store, and cache sweeps
//   - Health endpoints backed by the record store and the install and
//     cache roots
//   - Optional OpenTelemetry traces and metrics exported over OTLP/gRPC
//   - A shutdown manager that stops HTTP servers and runs registered
//     cleanup functions under a shared timeout
//
// # Metrics
//
// Create and register metrics once at startup, then wrap the API router:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	handler := observability.HTTPMetricsMiddleware(metrics)(router)
//	observability.RegisterMetricsEndpoint(healthMux, registry)
//
// # Health Checks
//
// The health checker pings the record store and verifies the install and
// cache roots still exist. A missing directory degrades the status, a dead
// record store makes it unhealthy:
//
//	checker := observability.NewHealthChecker(records, installRoot, cacheRoot)
//	observability.RegisterHealthRoutes(healthMux, checker)
//
// GET /health and /health/ready return 503 when unhealthy; /health/live
// always returns 200 while the process runs.
//
// # Shutdown
//
//	sm := observability.NewShutdownManager(log, cfg.Server.ShutdownTimeout)
//	sm.AddServer(apiServer)
//	sm.AddServer(healthServer)
//	sm.RegisterShutdownFunc(func(ctx context.Context) error { return records.Close() })
//	err := sm.WaitForShutdown()
//
// # Related Packages
//
//   - pkg/middleware: request logging that merges TraceFields
//   - pkg/api: the instrumented HTTP surface
package observability
