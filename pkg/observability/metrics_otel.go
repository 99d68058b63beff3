package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds OpenTelemetry metric instruments for the icon pipeline
// and the application registry. They complement the Prometheus metrics when
// an OTLP collector is configured.
type OTelMetrics struct {
	iconRequestsTotal metric.Int64Counter
	iconFetchDuration metric.Float64Histogram
	appsLoaded        metric.Int64UpDownCounter
	appLoadsTotal     metric.Int64Counter
	appUninstalls     metric.Int64Counter
}

// NewOTelMetrics creates a new OTel metrics instance
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter("github.com/griddeck/griddeck")

	m := &OTelMetrics{}
	var err error

	m.iconRequestsTotal, err = meter.Int64Counter(
		"panel.icon.requests",
		metric.WithDescription("Icon fetches by rendition and outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon_requests counter: %w", err)
	}

	m.iconFetchDuration, err = meter.Float64Histogram(
		"panel.icon.fetch.duration",
		metric.WithDescription("Icon fetch duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon_fetch_duration histogram: %w", err)
	}

	m.appsLoaded, err = meter.Int64UpDownCounter(
		"panel.apps.loaded",
		metric.WithDescription("Number of applications currently loaded"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create apps_loaded counter: %w", err)
	}

	m.appLoadsTotal, err = meter.Int64Counter(
		"panel.app.loads",
		metric.WithDescription("Application load attempts by status"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create app_loads counter: %w", err)
	}

	m.appUninstalls, err = meter.Int64Counter(
		"panel.app.uninstalls",
		metric.WithDescription("Application uninstall attempts by status"),
		metric.WithUnit("{uninstall}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create app_uninstalls counter: %w", err)
	}

	return m, nil
}

// RecordIconFetch records a single icon fetch
func (m *OTelMetrics) RecordIconFetch(ctx context.Context, rendition, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("icon.rendition", rendition),
		attribute.String("icon.outcome", outcome),
	}

	m.iconRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.iconFetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAppLoad records an application load attempt
func (m *OTelMetrics) RecordAppLoad(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.appLoadsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("load.status", status),
	))
}

// RecordAppUninstall records an application uninstall attempt
func (m *OTelMetrics) RecordAppUninstall(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.appUninstalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("uninstall.status", status),
	))
}

// AddAppsLoaded adjusts the loaded-application count by delta
func (m *OTelMetrics) AddAppsLoaded(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.appsLoaded.Add(ctx, delta)
}
