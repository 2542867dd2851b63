package middleware

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"recolhe/pkg/logger"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) *SenderRateLimiter {
	t.Helper()
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
	limiter := NewSenderRateLimiter(limit, window, DefaultSenderExtractor, log)
	t.Cleanup(limiter.Stop)
	return limiter
}

func TestAllowEnforcesLimit(t *testing.T) {
	limiter := newTestLimiter(t, 2, time.Minute)

	if !limiter.Allow("5511999990000") {
		t.Fatal("first request must be allowed")
	}
	if !limiter.Allow("5511999990000") {
		t.Fatal("second request must be allowed")
	}
	if limiter.Allow("5511999990000") {
		t.Error("third request within the window must be rejected")
	}
}

func TestAllowIsPerSender(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)

	if !limiter.Allow("a") {
		t.Fatal("first sender must be allowed")
	}
	if !limiter.Allow("b") {
		t.Error("a different sender must have its own window")
	}
	if limiter.Allow("a") {
		t.Error("first sender must be over its limit")
	}
}

func TestAllowEmptySender(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)

	for i := 0; i < 5; i++ {
		if !limiter.Allow("") {
			t.Fatal("requests without a sender identity are never limited")
		}
	}
}

func TestAllowWindowExpiry(t *testing.T) {
	limiter := newTestLimiter(t, 1, 10*time.Millisecond)

	if !limiter.Allow("a") {
		t.Fatal("first request must be allowed")
	}
	if limiter.Allow("a") {
		t.Fatal("second request within the window must be rejected")
	}

	time.Sleep(15 * time.Millisecond)

	if !limiter.Allow("a") {
		t.Error("request after the window elapsed must be allowed")
	}
}

func TestAllowConcurrentExactness(t *testing.T) {
	const limit = 10
	limiter := newTestLimiter(t, limit, time.Minute)

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 2*limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("5511999990000") {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	// Concurrent deliveries must never slip past the limit or lose a
	// recorded timestamp to a racing overwrite.
	if allowed != limit {
		t.Errorf("allowed = %d concurrent requests, expected exactly %d", allowed, limit)
	}
}
