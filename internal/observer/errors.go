package observer

import (
	"context"
	"errors"
	"net"
)

// transientError marks a failure that may succeed on retry: timeouts,
// rate limits, 5xx responses, network errors. Malformed verdicts and
// auth failures are permanent and never wrapped.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error {
	return &transientError{err: err}
}

// IsTransient reports whether the error is worth retrying.
// Context cancellation is caller-initiated and never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// The explicit transient marker wins: a per-attempt client timeout
	// unwraps to context.DeadlineExceeded but is still retryable.
	var te *transientError
	if errors.As(err, &te) {
		return true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
