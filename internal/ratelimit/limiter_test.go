package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_ZeroIsUnlimited(t *testing.T) {
	limiter := NewRateLimiter(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("zero-rate limiter should not block, took %v", elapsed)
	}
}

func TestRateLimiter_EnforcesRate(t *testing.T) {
	limiter := NewRateLimiter(10)

	start := time.Now()
	// Burst of 10 goes through immediately; the next 5 are paced at 10/s.
	for i := 0; i < 15; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 400*time.Millisecond {
		t.Errorf("expected waits beyond the burst to be paced, took %v", elapsed)
	}
}

func TestRateLimiter_CancelledContext(t *testing.T) {
	limiter := NewRateLimiter(1)
	// Drain the burst so the next wait would actually block.
	_ = limiter.Wait(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Wait(ctx); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}

func TestRateLimiter_SetRate(t *testing.T) {
	limiter := NewRateLimiter(1)
	limiter.SetRate(0)

	start := time.Now()
	for i := 0; i < 50; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("expected no pacing after SetRate(0), took %v", elapsed)
	}
}
