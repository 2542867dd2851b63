package middleware

import (
	"net/http"
	"sync"
	"time"

	"recolhe/pkg/logger"
)

// SenderExtractor resolves the conversation identity a request belongs to.
type SenderExtractor func(r *http.Request) string

// SenderRateLimiter limits webhook deliveries per conversation identity
// within a sliding window.
type SenderRateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor SenderExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewSenderRateLimiter(limit int, window time.Duration, extractor SenderExtractor, log *logger.Logger) *SenderRateLimiter {
	limiter := &SenderRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *SenderRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for sender, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, sender)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *SenderRateLimiter) Stop() {
	close(rl.stopCh)
}

// Allow holds the write lock across the whole check-and-append so two
// concurrent deliveries for one sender cannot both read the same window and
// overwrite each other's timestamp.
func (rl *SenderRateLimiter) Allow(sender string) bool {
	if sender == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamps := rl.requests[sender]
	valid := make([]time.Time, 0, len(timestamps)+1)
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[sender] = valid
		return false
	}

	rl.requests[sender] = append(valid, now)
	return true
}

func SenderRateLimit(limiter *SenderRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sender := ""
			if limiter.extractor != nil {
				sender = limiter.extractor(r)
			}

			if sender == "" || limiter.Allow(sender) {
				next.ServeHTTP(w, r)
				return
			}

			limiter.log.Warn("Rate limit exceeded",
				"request_id", requestIDFrom(r),
				"sender", sender,
				"path", r.URL.Path,
			)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
		})
	}
}

// DefaultSenderExtractor reads the conversation identity set by the
// transport in front of the webhook.
func DefaultSenderExtractor(r *http.Request) string {
	return r.Header.Get("X-Conversation-ID")
}
