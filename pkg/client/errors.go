package client

import (
	"errors"
	"fmt"
)

// Class categorizes a retrieval failure for callers and for retry decisions.
type Class string

const (
	// ClassInvalidRequest covers malformed caller input and non-retryable
	// 4xx provider responses. Never retried, never cached.
	ClassInvalidRequest Class = "invalid_request"

	// ClassRateLimited means the provider's throttling signal persisted past
	// the bounded retry budget.
	ClassRateLimited Class = "rate_limited"

	// ClassUnavailable covers transport failures and 5xx responses, surfaced
	// after the bounded backoff policy is exhausted.
	ClassUnavailable Class = "provider_unavailable"

	// ClassProviderError is a well-formed error response from the provider
	// (e.g. "symbol not found"). Passed through, not retried.
	ClassProviderError Class = "provider_error"
)

// ErrContextCancelled is returned when the caller's context is cancelled
// while waiting on the rate window or a retry backoff.
var ErrContextCancelled = errors.New("context cancelled")

// Error is a classified provider failure. It propagates unchanged from the
// provider client through the retrieval policy and gateway to the caller.
type Error struct {
	Provider   string
	Class      Class
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s (status %d): %s: %v",
			e.Provider, e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s (status %d): %s",
		e.Provider, e.Class, e.StatusCode, e.Message)
}

// Unwrap supports errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassOf extracts the classification from an error chain. Returns the empty
// Class for unclassified errors.
func ClassOf(err error) Class {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Class
	}
	return ""
}

// InvalidRequest builds a caller-input error that short-circuits before any
// network call is made.
func InvalidRequest(provider, message string) *Error {
	return &Error{Provider: provider, Class: ClassInvalidRequest, Message: message}
}

// retryable reports whether a failure class may be retried under the bounded
// backoff policy. Invalid requests and provider-level errors are terminal.
func retryable(c Class) bool {
	switch c {
	case ClassRateLimited, ClassUnavailable:
		return true
	default:
		return false
	}
}
