package ratelimit

import (
	"context"
	"time"
)

// FallbackRateLimiter consults primary and switches to secondary for any
// request where primary returns an error, typically Redis being unreachable.
type FallbackRateLimiter struct {
	primary   RateLimiter
	secondary RateLimiter
}

func NewFallbackRateLimiter(primary, secondary RateLimiter) *FallbackRateLimiter {
	return &FallbackRateLimiter{primary: primary, secondary: secondary}
}

func (f *FallbackRateLimiter) Allow(ctx context.Context, clientID, category string) (bool, time.Duration, error) {
	allowed, reset, err := f.primary.Allow(ctx, clientID, category)
	if err == nil {
		return allowed, reset, nil
	}
	return f.secondary.Allow(ctx, clientID, category)
}

func (f *FallbackRateLimiter) Limit(category string) RateLimit {
	return f.primary.Limit(category)
}

func (f *FallbackRateLimiter) GetStats() RateLimiterStats {
	p, s := f.primary.GetStats(), f.secondary.GetStats()
	return statsSnapshot(p.TotalRequests+s.TotalRequests, p.BlockedRequests+s.BlockedRequests)
}
