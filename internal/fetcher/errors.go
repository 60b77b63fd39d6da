package fetcher

import (
	"fmt"
	"time"
)

// NetworkError indicates the request never produced a response:
// connection refused, DNS failure, or a TLS handshake failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates no response arrived within the configured budget.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout fetching %s: no response within %s", e.URL, e.Timeout)
}
