package resilience

import (
	"context"
	"time"
)

// TimeoutConfig configures a Timeout.
type TimeoutConfig struct {
	// Timeout is the operation's time limit.
	// Default: 30 seconds
	Timeout time.Duration
}

// Timeout bounds an operation's execution time. The MCP dispatcher wraps
// every tool handler in one so a stuck backend cannot hold a request open.
type Timeout struct {
	limit time.Duration
}

// NewTimeout creates a timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Timeout{limit: config.Timeout}
}

// Execute runs op under the time limit and returns ErrTimeout when the
// limit expires first. The operation's context is canceled at the limit;
// an operation that ignores its context keeps running in its goroutine,
// but its result is discarded.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return ctx.Err()
	}
}

// Limit returns the configured time limit.
func (t *Timeout) Limit() time.Duration { return t.limit }
