package health

import (
	"context"
	"time"
)

// Status is a probe outcome, ordered by severity.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

var statusNames = [...]string{"healthy", "degraded", "unhealthy"}

func (s Status) String() string {
	if s < StatusHealthy || s > StatusUnhealthy {
		return "unknown"
	}
	return statusNames[s]
}

// Result is one probe's outcome. Degraded means the dependency is impaired
// but the server can still verify and serve (for example, an unreachable
// JWKS endpoint while cached keys are fresh).
type Result struct {
	Status  Status
	Message string

	// Details carries probe-specific metadata into the detailed report.
	Details map[string]any

	Duration  time.Duration
	CheckedAt time.Time
	Error     error
}

// Healthy builds a passing result.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message, CheckedAt: time.Now()}
}

// Degraded builds an impaired-but-serving result.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message, CheckedAt: time.Now()}
}

// Unhealthy builds a failing result.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err, CheckedAt: time.Now()}
}

// WithDetails attaches metadata to the result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker probes one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

type checkerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc adapts a function into a Checker.
func NewCheckerFunc(name string, fn func(context.Context) Result) Checker {
	return &checkerFunc{name: name, fn: fn}
}

func (c *checkerFunc) Name() string                      { return c.name }
func (c *checkerFunc) Check(ctx context.Context) Result { return c.fn(ctx) }
