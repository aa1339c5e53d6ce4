package retry

import (
	"context"
	"time"

	"github.com/vvka-141/pgcsv/pkg/pgcsv"
)

// Executor repeats an operation while its errors are transient.
//
// The Executor is safe for concurrent use. WithOnRetry returns a copy, so
// callers never share callbacks.
type Executor struct {
	classifier pgcsv.ErrorClassifier
	strategy   pgcsv.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier pgcsv.ErrorClassifier, strategy pgcsv.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
	}
}

// NewConnectExecutor returns the executor used for establishing connections.
func NewConnectExecutor() *Executor {
	return NewExecutor(
		NewConnectErrorClassifier(),
		NewExponentialBackoff(pgcsv.DefaultRetryMaxAttempts,
			WithInitialDelay(pgcsv.DefaultRetryInitialDelay),
			WithMaxDelay(pgcsv.DefaultRetryMaxDelay),
		),
	)
}

// WithOnRetry returns a new Executor with the specified retry callback.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation once and then retries transient failures until the
// strategy's attempts are exhausted. The last error is returned.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	lastErr := operation(ctx)
	if lastErr == nil || !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	maxAttempts := e.strategy.MaxAttempts()
	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = operation(ctx)
		if lastErr == nil || !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
