// Package limiter provides per-key windowed rate limiting and a
// token-bucket throttle for smoothing calls to shared resources.
package limiter

import (
	"log/slog"
	"sync"
	"time"
)

// RateLimit defines the maximum number of requests per time interval.
type RateLimit struct {
	Interval time.Duration
	MaxCount int
}

// RateLimiter tracks request counts per key over one or more
// intervals. All limits must pass for a request to be allowed.
type RateLimiter struct {
	mu         sync.Mutex
	keys       map[string]*keyData
	rateLimits []RateLimit

	cleanupInterval time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
}

// keyData stores the request counts and window starts per interval.
type keyData struct {
	requestCounts map[time.Duration]int
	windowStarts  map[time.Duration]time.Time
}

// NewRateLimiter creates a rate limiter enforcing all given limits.
// A positive cleanupInterval starts a background sweep of idle keys;
// call Close to stop it.
func NewRateLimiter(cleanupInterval time.Duration, rateLimits ...RateLimit) *RateLimiter {
	rl := &RateLimiter{
		keys:            make(map[string]*keyData),
		rateLimits:      rateLimits,
		cleanupInterval: cleanupInterval,
		stopCh:          make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go rl.cleanupLoop()
	}

	return rl
}

// Close stops the background cleanup. Safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// cleanupLoop periodically drops keys whose windows have all lapsed.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := rl.removeIdle(); n > 0 {
				slog.Debug("limiter: dropped idle keys", "count", n)
			}
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) removeIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, data := range rl.keys {
		idle := true
		for _, limit := range rl.rateLimits {
			if now.Sub(data.windowStarts[limit.Interval]) < limit.Interval {
				idle = false
				break
			}
		}
		if idle {
			delete(rl.keys, key)
			removed++
		}
	}
	return removed
}

// AllowRequest checks if a request is allowed for the given key and
// counts it when so.
func (rl *RateLimiter) AllowRequest(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	data, exists := rl.keys[key]
	if !exists {
		data = &keyData{
			requestCounts: make(map[time.Duration]int),
			windowStarts:  make(map[time.Duration]time.Time),
		}
		rl.keys[key] = data
	}

	for _, limit := range rl.rateLimits {
		if _, ok := data.windowStarts[limit.Interval]; !ok {
			data.windowStarts[limit.Interval] = now
		}

		if now.Sub(data.windowStarts[limit.Interval]) >= limit.Interval {
			data.requestCounts[limit.Interval] = 0
			data.windowStarts[limit.Interval] = now
		}

		if data.requestCounts[limit.Interval] >= limit.MaxCount {
			return false
		}
	}

	for _, limit := range rl.rateLimits {
		data.requestCounts[limit.Interval]++
	}

	return true
}

// NextActionTime returns when the next request will be allowed for the
// given key. For an unknown or unconstrained key that is now.
func (rl *RateLimiter) NextActionTime(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	data, exists := rl.keys[key]
	if !exists {
		return time.Now()
	}

	var next time.Time
	for _, limit := range rl.rateLimits {
		windowEnd := data.windowStarts[limit.Interval].Add(limit.Interval)
		if data.requestCounts[limit.Interval] >= limit.MaxCount {
			if next.IsZero() || windowEnd.Before(next) {
				next = windowEnd
			}
		}
	}

	if next.IsZero() {
		return time.Now()
	}
	return next
}
