package queue

import (
	"context"
	"errors"
	"time"
)

// Task is a unit of asynchronous work. Implementations carry the minimal
// state needed to identify and resume their work; everything else is re-read
// from the persistent store at execution time.
type Task interface {
	// Name identifies the task type in logs.
	Name() string

	// OverlapKey keys the mutual-exclusion guard: at most one task with a
	// given non-empty key executes at a time. An empty key disables the guard.
	OverlapKey() string

	// MaxAttempts is the total retry budget, including the first attempt.
	MaxAttempts() int

	// Backoff is the delay schedule between attempts. Attempt n retries after
	// Backoff[n-1]; the last entry applies to any further attempts.
	Backoff() []time.Duration

	// Run executes the task. Returning an error wrapped by Retryable requeues
	// the task per the backoff schedule; any other error is terminal on the
	// first occurrence.
	Run(ctx context.Context) error

	// Failed is invoked once when the task fails terminally, either by
	// exhausting its retry budget or by returning a non-retryable error.
	Failed(ctx context.Context, err error)
}

// retryableError marks a transient failure worth re-dispatching.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable wraps err so the dispatcher retries the task per its backoff
// schedule instead of failing it immediately.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var r *retryableError
	return errors.As(err, &r)
}
