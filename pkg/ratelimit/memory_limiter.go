package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryRateLimiter applies the same fixed-window rule as the Redis limiter
// within a single process. It is used when Redis is unavailable.
type MemoryRateLimiter struct {
	config  *Config
	mu      sync.Mutex
	windows map[string]*window
	total   atomic.Int64
	blocked atomic.Int64
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	start time.Time
	count int
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &MemoryRateLimiter{
		config:  config,
		windows: make(map[string]*window),
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go limiter.cleanupLoop()
	}

	return limiter
}

func (r *MemoryRateLimiter) Allow(_ context.Context, clientID, category string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	r.total.Add(1)

	limit := r.config.Limit(category)
	key := clientID + ":" + category
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[key]
	if !ok || now.Sub(w.start) >= limit.WindowSize {
		w = &window{start: now}
		r.windows[key] = w
	}

	if w.count < limit.BurstSize {
		w.count++
		return true, 0, nil
	}

	r.blocked.Add(1)
	reset := w.start.Add(limit.WindowSize).Sub(now).Round(time.Second)
	if reset < time.Second {
		reset = time.Second
	}
	return false, reset, nil
}

func (r *MemoryRateLimiter) Limit(category string) RateLimit {
	return r.config.Limit(category)
}

func (r *MemoryRateLimiter) GetStats() RateLimiterStats {
	return statsSnapshot(r.total.Load(), r.blocked.Load())
}

// Close stops the cleanup goroutine.
func (r *MemoryRateLimiter) Close() {
	r.once.Do(func() { close(r.stop) })
}

func (r *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.cleanup()
		}
	}
}

// cleanup drops windows idle for longer than an hour.
func (r *MemoryRateLimiter) cleanup() {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, w := range r.windows {
		if now.Sub(w.start) > time.Hour {
			delete(r.windows, key)
		}
	}
}
