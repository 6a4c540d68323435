package exa

import (
	"errors"
	"fmt"
	"time"
)

// AuthError is returned when the API key is missing or rejected.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("exa authentication failed: %s", e.Message)
	}
	return fmt.Sprintf("exa authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// RateLimitError is returned on HTTP 429. RetryAfter is zero when the
// server did not send a usable Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("exa rate limit exceeded, retry after %s: %s", e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("exa rate limit exceeded: %s", e.Message)
}

// TransientNetworkError covers transport failures, timeouts and 5xx
// responses.
type TransientNetworkError struct {
	StatusCode int
	Err        error
}

func (e *TransientNetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("exa server error (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("exa request failed: %v", e.Err)
}

func (e *TransientNetworkError) Unwrap() error {
	return e.Err
}

// EmptyResultError is returned when a call succeeds but yields nothing.
type EmptyResultError struct {
	Endpoint string
	Query    string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("exa %s returned no results for %q", e.Endpoint, e.Query)
}

// APIError is any other non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exa API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	var rl *RateLimitError
	var tn *TransientNetworkError
	return errors.As(err, &rl) || errors.As(err, &tn)
}
