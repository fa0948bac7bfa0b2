package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryPolicy holds the parameters for the retry strategy: how many attempts,
// how long between them, and which HTTP status codes are worth retrying.
type RetryPolicy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	RetryStatuses []int
	Logger        *Logger
}

// PermanentError wraps an error that must not be retried, e.g. an HTTP 404.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// RetryableStatus reports whether status is in the policy's retryable set.
func (r *RetryPolicy) RetryableStatus(status int) bool {
	for _, s := range r.RetryStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Do executes fn with exponential back-off retry logic. A PermanentError or a
// cancelled context stops the attempts immediately.
func (r *RetryPolicy) Do(ctx context.Context, operationName string, fn func() error) error {
	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			return perm.Err
		}

		if attempt < r.MaxAttempts {
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
