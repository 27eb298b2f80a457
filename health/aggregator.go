package health

import (
	"context"
	"sync"
	"time"
)

// AggregatorConfig configures the composite probe.
type AggregatorConfig struct {
	// Timeout bounds one CheckAll pass across every registered probe.
	// Default: 10 seconds
	Timeout time.Duration

	// Parallel runs the probes concurrently. Default: true
	Parallel bool
}

// Aggregator runs every registered probe and folds the results into one
// status for the readiness endpoint.
type Aggregator struct {
	timeout  time.Duration
	parallel bool

	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewAggregator creates an aggregator. Call without arguments for the
// defaults.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{Timeout: 10 * time.Second, Parallel: true}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = 10 * time.Second
		}
	}
	return &Aggregator{
		timeout:  cfg.Timeout,
		parallel: cfg.Parallel,
		checkers: make(map[string]Checker),
	}
}

// Register adds a probe under the given name. Registering the same name
// again replaces the probe.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers[name] = checker
}

// CheckAll runs every registered probe under one shared deadline.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make(map[string]Checker, len(a.checkers))
	for name, checker := range a.checkers {
		checkers[name] = checker
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if !a.parallel {
		for name, checker := range checkers {
			results[name] = runProbe(ctx, checker)
		}
		return results
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			result := runProbe(ctx, checker)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	return results
}

// OverallStatus folds the results into their worst status. No results
// means healthy: a server with nothing to probe has nothing failing.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	worst := StatusHealthy
	for _, result := range results {
		if result.Status > worst {
			worst = result.Status
		}
	}
	return worst
}

// runProbe runs one probe in its own goroutine so a stuck dependency
// cannot hold the whole pass past the shared deadline.
func runProbe(ctx context.Context, checker Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		result := checker.Check(ctx)
		result.Duration = time.Since(start)
		if result.CheckedAt.IsZero() {
			result.CheckedAt = start
		}
		done <- result
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			CheckedAt: start,
		}
	}
}
