package observe

import (
	"context"
	"time"
)

// HandleFunc is the signature for MCP request handlers that Middleware wraps.
type HandleFunc func(ctx context.Context, meta CallMeta, params any) (any, error)

// Middleware wraps request handling with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe HandleFunc.
//   - Context: propagates context through tracing spans.
//   - Errors: errors from the wrapped function are recorded and propagated unchanged.
//   - Ownership: params and results are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics CallMetrics
	logger  Logger
}

// NewMiddleware creates a Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics CallMetrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a HandleFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn HandleFunc) HandleFunc {
	return func(ctx context.Context, meta CallMeta, params any) (any, error) {
		ctx, span := m.tracer.StartCall(ctx, meta)

		start := time.Now()
		result, err := fn(ctx, meta, params)
		duration := time.Since(start)

		m.tracer.EndCall(span, err)
		m.metrics.RecordCall(ctx, meta, duration, err)

		callLogger := m.logger.With(
			Field{Key: "mcp.server", Value: meta.Server},
			Field{Key: "mcp.method", Value: meta.Method},
		)
		if meta.Tool != "" {
			callLogger = callLogger.With(Field{Key: "mcp.tool", Value: meta.Tool})
		}

		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			callLogger.Error(ctx, "request failed", fields...)
		} else {
			callLogger.Info(ctx, "request completed", fields...)
		}

		return result, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewCallMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
