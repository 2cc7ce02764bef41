package internal

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter provides simple in-memory per-IP rate limiting for the webhook
// endpoint. Cleanup of expired buckets happens lazily on request handling so
// no background goroutine is needed.
type RateLimiter struct {
	mu            sync.Mutex
	requests      map[string]*bucket
	limit         int
	window        time.Duration
	requestCount  int
	cleanupEvery  int
	cleanupAtSize int
}

type bucket struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a rate limiter allowing limit requests per window
// per client IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests:      make(map[string]*bucket),
		limit:         limit,
		window:        window,
		cleanupEvery:  100,
		cleanupAtSize: 200,
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	rl.requestCount++
	if rl.requestCount%rl.cleanupEvery == 0 || len(rl.requests) > rl.cleanupAtSize {
		rl.cleanupExpired(now)
		if rl.requestCount >= rl.cleanupEvery*10 {
			rl.requestCount = 0
		}
	}

	b, exists := rl.requests[ip]
	if !exists || now.After(b.resetAt) {
		rl.requests[ip] = &bucket{count: 1, resetAt: now.Add(rl.window)}
		return true
	}

	if b.count >= rl.limit {
		return false
	}

	b.count++
	return true
}

func (rl *RateLimiter) cleanupExpired(now time.Time) {
	for ip, b := range rl.requests {
		if now.After(b.resetAt) {
			delete(rl.requests, ip)
		}
	}
}

// Middleware wraps an HTTP handler with rate limiting.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(GetClientIP(r)) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClientIP extracts the client IP, preferring the first entry of
// X-Forwarded-For when present.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.Split(xff, ",")[0]; ip != "" {
			return strings.TrimSpace(ip)
		}
	}
	return r.RemoteAddr
}
