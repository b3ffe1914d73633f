package chatglot

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_BurstThenExhausted(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, BurstSize: 3})

	for i := 0; i < 3; i++ {
		if !limiter.TryAcquire() {
			t.Fatalf("acquire %d should succeed within burst", i)
		}
	}

	if limiter.TryAcquire() {
		t.Error("acquire beyond burst should fail")
	}
}

func TestRateLimiter_Refills(t *testing.T) {
	// 6000 RPM = 100 tokens/second, so a drained bucket refills within
	// tens of milliseconds.
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 6000, BurstSize: 1})

	if !limiter.TryAcquire() {
		t.Fatal("first acquire should succeed")
	}

	time.Sleep(50 * time.Millisecond)

	if !limiter.TryAcquire() {
		t.Error("bucket should have refilled")
	}
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1})
	limiter.TryAcquire() // drain

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Error("expected Wait to fail once the context expires")
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{})

	if limiter.Available() != 60 {
		t.Errorf("expected default burst of 60, got %v", limiter.Available())
	}
}
