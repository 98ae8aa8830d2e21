package ratelimit

import (
	"context"
	"time"
)

// RateLimiter decides whether a client may make another request in a
// category of endpoints.
type RateLimiter interface {
	Allow(ctx context.Context, clientID, category string) (bool, time.Duration, error)
	Limit(category string) RateLimit
	GetStats() RateLimiterStats
}

// RateLimit allows BurstSize requests per WindowSize.
type RateLimit struct {
	RequestsPerMinute int           `json:"requestsPerMinute"`
	BurstSize         int           `json:"burstSize"`
	WindowSize        time.Duration `json:"windowSize"`
}

type RateLimiterStats struct {
	TotalRequests   int64   `json:"totalRequests"`
	BlockedRequests int64   `json:"blockedRequests"`
	BlockedPercent  float64 `json:"blockedPercent"`
}

func statsSnapshot(total, blocked int64) RateLimiterStats {
	s := RateLimiterStats{TotalRequests: total, BlockedRequests: blocked}
	if total > 0 {
		s.BlockedPercent = float64(blocked) / float64(total) * 100
	}
	return s
}
