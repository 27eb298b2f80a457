package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func counterValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s is not an int64 sum", m.Name)
	}

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestAuthMetrics_RecordsRejection verifies rejected tokens increment both
// counters and carry the reason attribute.
func TestAuthMetrics_RecordsRejection(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	metrics, err := NewAuthMetrics(meter)
	if err != nil {
		t.Fatalf("NewAuthMetrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordVerification(ctx, "auth0", 5*time.Millisecond, "token_expired")
	metrics.RecordVerification(ctx, "auth0", 2*time.Millisecond, "")

	collected := collect(t, reader)

	total, ok := collected["auth.verify.total"]
	if !ok {
		t.Fatal("auth.verify.total not recorded")
	}
	if got := counterValue(t, total); got != 2 {
		t.Errorf("auth.verify.total = %d, want 2", got)
	}

	rejected, ok := collected["auth.verify.rejected"]
	if !ok {
		t.Fatal("auth.verify.rejected not recorded")
	}
	if got := counterValue(t, rejected); got != 1 {
		t.Errorf("auth.verify.rejected = %d, want 1", got)
	}

	sum := rejected.Data.(metricdata.Sum[int64])
	reason, found := sum.DataPoints[0].Attributes.Value(attribute.Key("auth.reason"))
	if !found || reason.AsString() != "token_expired" {
		t.Errorf("expected auth.reason='token_expired' attribute, got %v", reason)
	}

	if _, ok := collected["auth.verify.duration_ms"]; !ok {
		t.Error("auth.verify.duration_ms not recorded")
	}
}

// TestCallMetrics_RecordsErrors verifies failed calls increment the error counter.
func TestCallMetrics_RecordsErrors(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	metrics, err := NewCallMetrics(meter)
	if err != nil {
		t.Fatalf("NewCallMetrics: %v", err)
	}

	ctx := context.Background()
	meta := CallMeta{Server: "notes", Method: "tools/call", Tool: "create_note"}
	metrics.RecordCall(ctx, meta, time.Millisecond, nil)
	metrics.RecordCall(ctx, meta, time.Millisecond, errors.New("boom"))

	collected := collect(t, reader)

	if got := counterValue(t, collected["mcp.call.total"]); got != 2 {
		t.Errorf("mcp.call.total = %d, want 2", got)
	}
	if got := counterValue(t, collected["mcp.call.errors"]); got != 1 {
		t.Errorf("mcp.call.errors = %d, want 1", got)
	}
}
