package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CallMetrics records MCP request metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type CallMetrics interface {
	// RecordCall records a handled request with duration and error status.
	RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error)
}

// AuthMetrics records token verification outcomes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type AuthMetrics interface {
	// RecordVerification records one verification attempt. An empty reason
	// means the token was accepted; any other value is the rejection reason
	// code.
	RecordVerification(ctx context.Context, provider string, duration time.Duration, reason string)
}

// callMetrics is the concrete implementation of CallMetrics.
type callMetrics struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewCallMetrics creates a CallMetrics instance on the given meter.
func NewCallMetrics(meter metric.Meter) (CallMetrics, error) {
	totalCount, err := meter.Int64Counter(
		"mcp.call.total",
		metric.WithDescription("Total number of handled MCP requests"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"mcp.call.errors",
		metric.WithDescription("Total number of failed MCP requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"mcp.call.duration_ms",
		metric.WithDescription("MCP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &callMetrics{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

func (m *callMetrics) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("mcp.server", meta.Server),
		attribute.String("mcp.method", meta.Method),
	}
	if meta.Tool != "" {
		attrs = append(attrs, attribute.String("mcp.tool", meta.Tool))
	}

	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// authMetrics is the concrete implementation of AuthMetrics.
type authMetrics struct {
	totalCount    metric.Int64Counter
	rejectedCount metric.Int64Counter
	durationHist  metric.Float64Histogram
}

// NewAuthMetrics creates an AuthMetrics instance on the given meter.
func NewAuthMetrics(meter metric.Meter) (AuthMetrics, error) {
	totalCount, err := meter.Int64Counter(
		"auth.verify.total",
		metric.WithDescription("Total number of token verification attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	rejectedCount, err := meter.Int64Counter(
		"auth.verify.rejected",
		metric.WithDescription("Total number of rejected tokens"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"auth.verify.duration_ms",
		metric.WithDescription("Token verification duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &authMetrics{
		totalCount:    totalCount,
		rejectedCount: rejectedCount,
		durationHist:  durationHist,
	}, nil
}

func (m *authMetrics) RecordVerification(ctx context.Context, provider string, duration time.Duration, reason string) {
	base := metric.WithAttributes(attribute.String("auth.provider", provider))

	m.totalCount.Add(ctx, 1, base)
	if reason != "" {
		m.rejectedCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("auth.provider", provider),
			attribute.String("auth.reason", reason),
		))
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), base)
}

// noopCallMetrics is a CallMetrics implementation that does nothing.
type noopCallMetrics struct{}

func (noopCallMetrics) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
}

// NewNoopCallMetrics creates a CallMetrics that discards everything.
func NewNoopCallMetrics() CallMetrics { return noopCallMetrics{} }

// noopAuthMetrics is an AuthMetrics implementation that does nothing.
type noopAuthMetrics struct{}

func (noopAuthMetrics) RecordVerification(ctx context.Context, provider string, duration time.Duration, reason string) {
}

// NewNoopAuthMetrics creates an AuthMetrics that discards everything.
func NewNoopAuthMetrics() AuthMetrics { return noopAuthMetrics{} }
