package chatglot

import (
	"errors"
	"strings"
	"testing"
)

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Op: "translate", Cause: cause}

	if err.Error() != "network error during translate: connection refused" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
}

func TestServerError(t *testing.T) {
	err := &ServerError{Status: 503, Detail: "model loading"}

	if err.Error() != "server error (status 503): model loading" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	// Without status
	err2 := &ServerError{Detail: "stream failed"}
	if err2.Error() != "server error: stream failed" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestParseError_TruncatesInput(t *testing.T) {
	err := &ParseError{Message: "malformed record", Input: strings.Repeat("x", 200)}

	if len(err.Error()) > 150 {
		t.Errorf("expected truncated input excerpt, got %d chars", len(err.Error()))
	}
	if !strings.Contains(err.Error(), "...") {
		t.Error("expected ellipsis in truncated excerpt")
	}
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Message: "missing API key"}

	if err.Error() != "configuration error: missing API key" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"network error", &NetworkError{Op: "translate"}, true},
		{"server 500", &ServerError{Status: 500}, true},
		{"server 503", &ServerError{Status: 503}, true},
		{"server 429", &ServerError{Status: 429}, true},
		{"server 400", &ServerError{Status: 400}, false},
		{"server 404", &ServerError{Status: 404}, false},
		{"parse error", &ParseError{Message: "bad json"}, false},
		{"configuration error", &ConfigurationError{Message: "no key"}, false},
		{"plain error", errors.New("whatever"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsRetryable(tt.err); result != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestIsRetryable_Wrapped(t *testing.T) {
	wrapped := &ServerError{Status: 502, Cause: errors.New("bad gateway")}
	outer := &NetworkError{Op: "translate", Cause: wrapped}

	if !IsRetryable(outer) {
		t.Error("wrapped retryable error should be retryable")
	}
}
