// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// keyedLimiter keeps one token bucket per key (a client IP) and forgets
// keys that have been idle for longer than ttl.
type keyedLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	ttl     time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newKeyedLimiter(rps float64, burst int, ttl time.Duration) *keyedLimiter {
	return &keyedLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
	}
}

// allow takes one token from key's bucket at time now.
func (k *keyedLimiter) allow(key string, now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.rate, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// prune drops buckets idle since before now-ttl and returns how many went.
func (k *keyedLimiter) prune(now time.Time) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	removed := 0
	for key, b := range k.buckets {
		if now.Sub(b.lastSeen) > k.ttl {
			delete(k.buckets, key)
			removed++
		}
	}
	return removed
}

func (k *keyedLimiter) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

// APIRateLimiter limits JSON API requests per client IP.
type APIRateLimiter struct {
	limiter *keyedLimiter
	now     func() time.Time
}

// NewAPIRateLimiter allows rps requests per second per IP with the given burst.
func NewAPIRateLimiter(rps float64, burst int) *APIRateLimiter {
	return &APIRateLimiter{
		limiter: newKeyedLimiter(rps, burst, 10*time.Minute),
		now:     time.Now,
	}
}

// Handler answers 429 with a JSON error once a client runs out of tokens.
// Idle clients are pruned on the request path, so no goroutine is needed.
func (l *APIRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := l.now()
		ip := getClientIP(r)

		if !l.limiter.allow(ip, now) {
			slog.Warn("api rate limit exceeded", "category", "auth", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			WriteAPIError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests", nil)
			return
		}

		if l.limiter.len() > 1000 {
			l.limiter.prune(now)
		}
		next.ServeHTTP(w, r)
	})
}
