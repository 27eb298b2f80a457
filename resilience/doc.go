// Package resilience provides timeout and retry wrappers for operations
// against external dependencies.
//
// Tool handlers run under a Timeout so a stuck backend cannot hold an MCP
// request open indefinitely. Retry covers startup paths such as connecting
// to a record store:
//
//	retry := resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 5})
//	err := retry.Execute(ctx, func(ctx context.Context) error {
//	    return connect(ctx)
//	})
package resilience
