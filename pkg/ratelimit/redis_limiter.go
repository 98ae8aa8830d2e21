package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientSource hands out the current Redis connection. pkg/redis.Client
// satisfies it.
type ClientSource interface {
	GetClient() *redis.Client
}

// fixedWindow counts requests per key in a window that starts at the first
// request. Returns {allowed, seconds until the window resets}.
var fixedWindow = redis.NewScript(`
	local key = KEYS[1]
	local burst_size = tonumber(ARGV[1])
	local window_size = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local count = tonumber(redis.call('HGET', key, 'count')) or 0
	local window_start = tonumber(redis.call('HGET', key, 'window_start')) or now

	if now - window_start >= window_size then
		count = 0
		window_start = now
	end

	local allowed = count < burst_size
	if allowed then
		count = count + 1
	end

	local reset_time = 0
	if not allowed then
		reset_time = math.ceil(((window_start + window_size) - now) / 1000)
	end

	redis.call('HSET', key, 'count', count, 'window_start', window_start)
	redis.call('PEXPIRE', key, window_size + 1000)

	return {allowed and 1 or 0, reset_time}
`)

// RedisRateLimiter shares counters across every API instance.
type RedisRateLimiter struct {
	source  ClientSource
	config  *Config
	total   atomic.Int64
	blocked atomic.Int64
}

func NewRedisRateLimiter(source ClientSource, config *Config) *RedisRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &RedisRateLimiter{
		source: source,
		config: config,
	}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, clientID, category string) (bool, time.Duration, error) {
	if !r.config.Enabled {
		return true, 0, nil
	}

	r.total.Add(1)

	limit := r.config.Limit(category)
	key := fmt.Sprintf("%s%s:%s", r.config.RedisKeyPrefix, clientID, category)

	result, err := fixedWindow.Run(ctx, r.source.GetClient(), []string{key},
		limit.BurstSize,
		limit.WindowSize.Milliseconds(),
		time.Now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("unexpected script result format")
	}

	if result[0] != 1 {
		r.blocked.Add(1)
		return false, time.Duration(result[1]) * time.Second, nil
	}

	return true, 0, nil
}

func (r *RedisRateLimiter) Limit(category string) RateLimit {
	return r.config.Limit(category)
}

func (r *RedisRateLimiter) GetStats() RateLimiterStats {
	return statsSnapshot(r.total.Load(), r.blocked.Load())
}
