// Package retry retries connection establishment with exponential backoff.
//
// Only opening a connection is retried. Once a file's load has started,
// failures are final for that file.
//
// # Example Usage
//
//	executor := retry.NewConnectExecutor().WithOnRetry(func(attempt int, err error, delay time.Duration) {
//	    logger.Verbose("retrying in %v: %v", delay, err)
//	})
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
