package chatglot

import (
	"context"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes a function with exponential backoff retry. Only errors
// for which IsRetryable holds are retried.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			delay := cfg.BaseDelay * time.Duration(1<<attempt)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

// RetryableClient wraps a ProtocolClient with retry logic on the
// single-shot modes. Progressive streams are never retried: a stream that
// has already delivered updates cannot be restarted without duplicating
// them.
type RetryableClient struct {
	client ProtocolClient
	config RetryConfig
}

// NewRetryableClient creates a client wrapper with retry logic.
func NewRetryableClient(client ProtocolClient, cfg RetryConfig) *RetryableClient {
	return &RetryableClient{
		client: client,
		config: cfg,
	}
}

// Translate implements ProtocolClient with retry logic.
func (c *RetryableClient) Translate(ctx context.Context, req Request) (*Result, error) {
	return WithRetry(ctx, c.config, func() (*Result, error) {
		return c.client.Translate(ctx, req)
	})
}

// TranslateAdaptive implements ProtocolClient with retry logic.
func (c *RetryableClient) TranslateAdaptive(ctx context.Context, req Request) (*Result, error) {
	return WithRetry(ctx, c.config, func() (*Result, error) {
		return c.client.TranslateAdaptive(ctx, req)
	})
}

// TranslateProgressive implements ProtocolClient. The stream is passed
// through without retry.
func (c *RetryableClient) TranslateProgressive(ctx context.Context, req Request, onUpdate UpdateFunc) (*Result, error) {
	return c.client.TranslateProgressive(ctx, req, onUpdate)
}

// Verify RetryableClient implements ProtocolClient
var _ ProtocolClient = (*RetryableClient)(nil)
