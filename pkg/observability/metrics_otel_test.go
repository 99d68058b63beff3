package observability

import (
	"context"
	"testing"
	"time"
)

func TestNewOTelMetrics(t *testing.T) {
	// The global meter provider defaults to a no-op implementation, which
	// still hands out working instruments.
	m, err := NewOTelMetrics()
	if err != nil {
		t.Fatalf("NewOTelMetrics failed: %v", err)
	}
	if m == nil {
		t.Fatal("Expected non-nil metrics")
	}

	ctx := context.Background()
	m.RecordIconFetch(ctx, "small", "memory", 2*time.Millisecond)
	m.RecordAppLoad(ctx, "success")
	m.RecordAppUninstall(ctx, "not_found")
	m.AddAppsLoaded(ctx, 1)
	m.AddAppsLoaded(ctx, -1)
}

func TestOTelMetrics_NilReceiver(t *testing.T) {
	// OTel metrics stay nil when the collector is disabled; recording
	// must be a no-op rather than a panic.
	var m *OTelMetrics

	ctx := context.Background()
	m.RecordIconFetch(ctx, "small", "disk", time.Millisecond)
	m.RecordAppLoad(ctx, "error")
	m.RecordAppUninstall(ctx, "success")
	m.AddAppsLoaded(ctx, 1)
}
