package exporters

import (
	"context"
	"testing"
)

// TestNewTracingExporter_None verifies the disabled exporter is still usable.
func TestNewTracingExporter_None(t *testing.T) {
	exp, err := NewTracingExporter(context.Background(), "none")
	if err != nil {
		t.Fatalf("NewTracingExporter(none): %v", err)
	}
	if exp == nil {
		t.Fatal("expected non-nil exporter")
	}
}

// TestNewTracingExporter_Unknown verifies unknown names are rejected.
func TestNewTracingExporter_Unknown(t *testing.T) {
	if _, err := NewTracingExporter(context.Background(), "bogus"); err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}

// TestNewMetricsReader_None verifies the disabled reader is still usable.
func TestNewMetricsReader_None(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "none")
	if err != nil {
		t.Fatalf("NewMetricsReader(none): %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}

// TestNewMetricsReader_Prometheus verifies the prometheus reader is created.
func TestNewMetricsReader_Prometheus(t *testing.T) {
	reader, err := NewMetricsReader(context.Background(), "prometheus")
	if err != nil {
		t.Fatalf("NewMetricsReader(prometheus): %v", err)
	}
	if reader == nil {
		t.Fatal("expected non-nil reader")
	}
}

// TestOTLP_RequiresEndpoint verifies a missing collector address is a
// startup error rather than a silently dropped signal.
func TestOTLP_RequiresEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	if _, err := NewTracingExporter(context.Background(), "otlp"); err == nil {
		t.Error("expected error for otlp tracing without an endpoint")
	}
	if _, err := NewMetricsReader(context.Background(), "otlp"); err == nil {
		t.Error("expected error for otlp metrics without an endpoint")
	}
}

// TestNewMetricsReader_Unknown verifies unknown names are rejected.
func TestNewMetricsReader_Unknown(t *testing.T) {
	if _, err := NewMetricsReader(context.Background(), "bogus"); err == nil {
		t.Fatal("expected error for unknown metrics exporter")
	}
}
