package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy selects how the delay grows between attempts.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear grows the delay by the initial delay each attempt.
	BackoffLinear
	// BackoffConstant keeps the delay fixed.
	BackoffConstant
)

// RetryConfig configures a Retry.
type RetryConfig struct {
	// MaxAttempts counts the initial attempt too.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the wait before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the wait between attempts.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier scales the exponential strategy.
	// Default: 2.0
	Multiplier float64

	// Strategy selects the backoff curve.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter spreads delays by up to 25% so restarting servers do not
	// hammer a recovering dependency in lockstep.
	// Default: true
	Jitter bool

	// RetryIf decides whether an error is worth another attempt. A nil
	// RetryIf retries every error.
	RetryIf func(err error) bool

	// OnRetry observes each retry, for logging.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-runs a failing operation with backoff. The servers use it when
// opening record stores at startup, where the database may still be coming
// up.
type Retry struct {
	cfg RetryConfig
}

// NewRetry creates a retry wrapper with defaults applied.
func NewRetry(cfg RetryConfig) *Retry {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = func(err error) bool { return err != nil }
	}
	return &Retry{cfg: cfg}
}

// Execute runs op until it succeeds, a non-retryable error occurs, the
// attempts run out, or the context is canceled while waiting. The last
// operation error is returned on exhaustion.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !r.cfg.RetryIf(lastErr) {
			return lastErr
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		delay := r.delayFor(attempt)
		if r.cfg.OnRetry != nil {
			r.cfg.OnRetry(attempt, lastErr, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func (r *Retry) delayFor(attempt int) time.Duration {
	var delay time.Duration
	switch r.cfg.Strategy {
	case BackoffConstant:
		delay = r.cfg.InitialDelay
	case BackoffLinear:
		delay = r.cfg.InitialDelay * time.Duration(attempt)
	default:
		scale := math.Pow(r.cfg.Multiplier, float64(attempt-1))
		delay = time.Duration(float64(r.cfg.InitialDelay) * scale)
	}

	if delay > r.cfg.MaxDelay {
		delay = r.cfg.MaxDelay
	}
	if r.cfg.Jitter && delay > 0 {
		// #nosec G404 -- timing variance, not key material.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}
