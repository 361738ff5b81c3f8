package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when a shopping list fails validation
	// before any network activity.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when a response is not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrQueueFull is returned when a rate limiter wait queue is at
	// capacity. Callers should shed load rather than retry immediately.
	ErrQueueFull = errors.New("rate limiter queue full")

	// ErrReleaseWithoutAcquire indicates a limiter release with no
	// matching acquire. It is a programming error, not a transient fault.
	ErrReleaseWithoutAcquire = errors.New("release called without matching acquire")

	// ErrDisallowedURL is returned when an outbound URL fails the
	// scheme/host allowlist. It indicates misconfiguration and is never
	// retried.
	ErrDisallowedURL = errors.New("URL not allowed for store")

	// ErrSessionExtract is returned when the session landing page does
	// not contain the expected build marker.
	ErrSessionExtract = errors.New("could not extract session build id")
)

// StoreAPIError wraps a failed store request with enough context to
// decide whether a retry could ever help.
type StoreAPIError struct {
	Store      StoreName
	StatusCode int
	Retryable  bool
	Message    string
	Err        error
}

func (e *StoreAPIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Store, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Store, e.Message)
}

func (e *StoreAPIError) Unwrap() error { return e.Err }

// IsRetryable reports whether err stems from a transient upstream
// condition (5xx, network failure, timeout).
func IsRetryable(err error) bool {
	var apiErr *StoreAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return false
}
