package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimeout_CompletesInTime(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("Execute: %v", err)
	}
}

func TestTimeout_Expires(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: 20 * time.Millisecond})

	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestTimeout_PropagatesOperationError(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	opErr := errors.New("boom")
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Errorf("err = %v, want operation error", err)
	}
}

func TestTimeout_DefaultLimit(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{})
	if timeout.Limit() != 30*time.Second {
		t.Errorf("Limit = %v, want 30s", timeout.Limit())
	}
}

func TestRetry_BackoffCurves(t *testing.T) {
	base := RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Jitter:       false,
	}

	tests := []struct {
		name     string
		strategy BackoffStrategy
		attempt  int
		want     time.Duration
	}{
		{"constant", BackoffConstant, 3, 100 * time.Millisecond},
		{"linear", BackoffLinear, 3, 300 * time.Millisecond},
		{"exponential", BackoffExponential, 3, 400 * time.Millisecond},
		{"exponential capped", BackoffExponential, 10, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Strategy = tt.strategy
			if got := NewRetry(cfg).delayFor(tt.attempt); got != tt.want {
				t.Errorf("delayFor(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	retry := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		Strategy:     BackoffConstant,
		Jitter:       false,
	})

	attempts := 0
	err := retry.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Errorf("Execute: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	retry := NewRetry(RetryConfig{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		Strategy:     BackoffConstant,
		Jitter:       false,
	})

	lastErr := errors.New("still broken")
	attempts := 0
	err := retry.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return lastErr
	})
	if !errors.Is(err, lastErr) {
		t.Errorf("err = %v, want last operation error", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetry_RespectsRetryIf(t *testing.T) {
	permanent := errors.New("permanent")
	retry := NewRetry(RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		RetryIf:      func(err error) bool { return !errors.Is(err, permanent) },
	})

	attempts := 0
	err := retry.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("err = %v, want permanent error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on permanent)", attempts)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	retry := NewRetry(RetryConfig{
		MaxAttempts:  10,
		InitialDelay: 50 * time.Millisecond,
		Strategy:     BackoffConstant,
		Jitter:       false,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Execute(ctx, func(ctx context.Context) error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
