package providers

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is the terminal reason of a fetch that used up its attempts.
	ErrExhausted = errors.New("exhausted retries")

	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid retry configuration")
)

// NetworkError wraps transport failures (DNS, connection refused, timeouts).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a response outside the 2xx range.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Status)
}

// ParseError reports a 2xx response whose body is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("invalid json body: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
