package api

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoToken is returned when an authenticated call is attempted with no
// stored token. The request is aborted before anything goes on the wire.
var ErrNoToken = errors.New("no authentication token available")

// TimeoutError means the request did not complete within the client's
// bounded wait and the in-flight call was cancelled.
type TimeoutError struct {
	Method   string
	Endpoint string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: timed out after %s", e.Method, e.Endpoint, e.Timeout)
}

// NetworkError means the request failed at the transport level before any
// HTTP status was received.
type NetworkError struct {
	Method   string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError means the server answered with a non-2xx status. Detail
// carries the server-provided message when the error body could be parsed.
type ProtocolError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Detail     string
}

func (e *ProtocolError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Endpoint, e.Detail)
	}
	return fmt.Sprintf("%s %s: HTTP status %d", e.Method, e.Endpoint, e.StatusCode)
}
