package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta contains metadata about an MCP request for telemetry purposes.
type CallMeta struct {
	Server string // Server name (required)
	Method string // JSON-RPC method, e.g. "tools/call" (required)
	Tool   string // Tool name for tools/call requests (may be empty)
}

// SpanName returns the deterministic span name for this call.
// Format: mcp.tool.<tool> for tool invocations, mcp.rpc.<method> otherwise.
func (m CallMeta) SpanName() string {
	if m.Tool != "" {
		return "mcp.tool." + m.Tool
	}
	return "mcp.rpc." + m.Method
}

// Tracer wraps OpenTelemetry tracing with request-scoped span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndCall must be best-effort and must not panic.
type Tracer interface {
	// StartCall starts a new span for an MCP request.
	StartCall(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndCall ends the span, recording any error.
	EndCall(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartCall starts a new span with request metadata as attributes.
func (t *tracerImpl) StartCall(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("mcp.server", meta.Server),
		attribute.String("mcp.method", meta.Method),
		attribute.Bool("mcp.error", false), // Updated in EndCall on failure
	}
	if meta.Tool != "" {
		attrs = append(attrs, attribute.String("mcp.tool", meta.Tool))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndCall ends the span and records the error status if present.
func (t *tracerImpl) EndCall(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("mcp.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartCall(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndCall(span trace.Span, err error) {
	span.End()
}
