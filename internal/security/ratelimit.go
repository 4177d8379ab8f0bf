package security

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter keyed by client identifier.
type RateLimiter struct {
	mu       sync.Mutex
	seen     map[string][]time.Time
	limit    int
	window   time.Duration
	burstMax int
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
	BurstMax          int
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerWindow: 100,
		WindowDuration:    time.Minute,
		BurstMax:          20,
	}
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		seen:     make(map[string][]time.Time),
		limit:    config.RequestsPerWindow,
		window:   config.WindowDuration,
		burstMax: config.BurstMax,
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a request is allowed for the given key (e.g. client IP).
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	valid := rl.seen[key][:0]
	for _, t := range rl.seen[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	rl.seen[key] = valid

	if len(valid) >= rl.limit {
		return false
	}

	// Burst check: requests in the last second
	burstCutoff := now.Add(-time.Second)
	burst := 0
	for _, t := range valid {
		if t.After(burstCutoff) {
			burst++
		}
	}
	if rl.burstMax > 0 && burst >= rl.burstMax {
		return false
	}

	rl.seen[key] = append(valid, now)
	return true
}

// Remaining returns the number of requests left in the window for a key.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.window)
	count := 0
	for _, t := range rl.seen[key] {
		if t.After(cutoff) {
			count++
		}
	}

	if remaining := rl.limit - count; remaining > 0 {
		return remaining
	}
	return 0
}

// ResetAt returns when the oldest tracked request for a key expires.
func (rl *RateLimiter) ResetAt(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	times := rl.seen[key]
	if len(times) == 0 {
		return time.Now()
	}
	return times[0].Add(rl.window)
}

// Limit returns the configured per-window request limit.
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// cleanup periodically drops keys with no recent requests.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-rl.window)
		for key, times := range rl.seen {
			if len(times) == 0 || !times[len(times)-1].After(cutoff) {
				delete(rl.seen, key)
			}
		}
		rl.mu.Unlock()
	}
}
