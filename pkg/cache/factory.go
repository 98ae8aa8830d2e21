package cache

import (
	goredis "github.com/redis/go-redis/v9"
)

// ClientSource hands out the current Redis connection. The shared
// pkg/redis.Client swaps its connection on reconnect, so callers must not
// hold on to the returned client.
type ClientSource interface {
	GetClient() *goredis.Client
}

// StaticClient wraps a fixed connection, for tests and tools.
type StaticClient struct {
	Client *goredis.Client
}

func (s StaticClient) GetClient() *goredis.Client { return s.Client }

// NewCacheManager creates a new cache manager with the specified Redis client and configuration
func NewCacheManager(source ClientSource, config CacheConfig) CacheManager {
	return NewRedisCacheManager(source, config)
}

// NewDefaultCacheManager creates a new cache manager with default configuration
func NewDefaultCacheManager(source ClientSource) CacheManager {
	return NewRedisCacheManager(source, DefaultCacheConfig())
}
