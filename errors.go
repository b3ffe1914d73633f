package chatglot

import (
	"errors"
	"fmt"
)

// NetworkError indicates a connection-level failure (refused, reset, timeout)
// talking to the translation service.
type NetworkError struct {
	Op    string // The operation that failed (e.g. "translate", "progressive stream")
	Cause error
}

func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("network error during %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("network error during %s", e.Op)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// ServerError indicates a non-2xx response from the translation service.
type ServerError struct {
	Status int    // HTTP status code, 0 when no status applies
	Detail string // Detail payload from the response body, if any
	Cause  error
}

func (e *ServerError) Error() string {
	msg := "server error"
	if e.Status != 0 {
		msg = fmt.Sprintf("server error (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ServerError) Unwrap() error {
	return e.Cause
}

// ParseError indicates malformed JSON or a malformed stream record. Parse
// failures on individual stream lines are logged and skipped by the client;
// parse failures on a final aggregate response are promoted to ServerError.
type ParseError struct {
	Message string
	Input   string // Excerpt of the offending input
	Cause   error
}

func (e *ParseError) Error() string {
	msg := "parse error: " + e.Message
	if e.Input != "" {
		excerpt := e.Input
		if len(excerpt) > 80 {
			excerpt = excerpt[:80] + "..."
		}
		msg += fmt.Sprintf(" (input: %q)", excerpt)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ConfigurationError indicates the engine is missing required configuration
// (typically the API key). Raised eagerly, before any network call.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// IsRetryable reports whether an error is worth retrying: network failures
// and server errors with a transient status (429, 5xx). Configuration and
// parse errors are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		return srvErr.Status == 429 || srvErr.Status >= 500
	}

	return false
}
