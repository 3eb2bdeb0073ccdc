// Package ratelimit provides per-user rate limiting. It offers two
// strategies: a token-bucket limiter with tiered limits for general API
// traffic, and a fixed-window counter for expensive operations.
package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Config holds the token-bucket limits per subscription tier.
type Config struct {
	FreeRPS         float64
	FreeBurst       int
	PaidRPS         float64
	PaidBurst       int
	CleanupInterval time.Duration // idle entries older than this are dropped
}

// DefaultConfig matches the limits applied when no environment overrides
// are set.
var DefaultConfig = Config{
	FreeRPS:         10,
	FreeBurst:       20,
	PaidRPS:         100,
	PaidBurst:       200,
	CleanupInterval: time.Hour,
}

type bucketEntry struct {
	limiter *rate.Limiter
	// lastSeen is unix nanos, updated atomically: the hot path touches it
	// under the read lock, where concurrent writers would otherwise race.
	lastSeen atomic.Int64
	paid     bool
}

// RateLimiter enforces per-user token-bucket limits. A user's entry is
// rebuilt when their tier changes so upgraded accounts get the larger
// bucket immediately.
type RateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucketEntry
	config  Config

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRateLimiter starts the limiter and its background sweep goroutine.
// Call Stop on shutdown.
func NewRateLimiter(config Config) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucketEntry),
		config:  config,
		stopCh:  make(chan struct{}),
	}
	rl.wg.Add(1)
	go rl.sweepLoop()
	return rl
}

// Allow reports whether a request from userID is within limits.
func (rl *RateLimiter) Allow(userID string, paid bool) bool {
	return rl.GetLimiter(userID, paid).Allow()
}

// GetLimiter returns the bucket for userID, creating or rebuilding it as
// needed.
func (rl *RateLimiter) GetLimiter(userID string, paid bool) *rate.Limiter {
	rl.mu.RLock()
	entry, ok := rl.buckets[userID]
	if ok && entry.paid == paid {
		entry.lastSeen.Store(time.Now().UnixNano())
		rl.mu.RUnlock()
		return entry.limiter
	}
	rl.mu.RUnlock()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Re-check under the write lock.
	entry, ok = rl.buckets[userID]
	if ok && entry.paid == paid {
		entry.lastSeen.Store(time.Now().UnixNano())
		return entry.limiter
	}

	rps, burst := rl.config.FreeRPS, rl.config.FreeBurst
	if paid {
		rps, burst = rl.config.PaidRPS, rl.config.PaidBurst
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	entry = &bucketEntry{limiter: limiter, paid: paid}
	entry.lastSeen.Store(time.Now().UnixNano())
	rl.buckets[userID] = entry
	return limiter
}

// Sweep drops buckets idle longer than the cleanup interval.
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.config.CleanupInterval).UnixNano()
	for userID, entry := range rl.buckets {
		if entry.lastSeen.Load() < cutoff {
			delete(rl.buckets, userID)
		}
	}
}

func (rl *RateLimiter) sweepLoop() {
	defer rl.wg.Done()

	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Sweep()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop terminates the sweep goroutine and waits for it to exit.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
	rl.wg.Wait()
}

// Len reports the number of tracked buckets.
func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.buckets)
}
