package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"carmarket-backend/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Client owns the shared Redis connection used by the cache and the rate
// limiter. It health-checks in the background and reconnects with backoff.
type Client struct {
	client        *redis.Client
	config        config.RedisConfig
	log           zerolog.Logger
	mu            sync.RWMutex
	isConnected   bool
	reconnectChan chan struct{}
	ctx           context.Context
	cancel        context.CancelFunc
}

type HealthStatus struct {
	IsConnected    bool          `json:"isConnected"`
	LastPing       time.Time     `json:"lastPing"`
	ResponseTime   time.Duration `json:"responseTime"`
	ConnectionInfo string        `json:"connectionInfo"`
	Error          string        `json:"error,omitempty"`
}

// Options turns the Redis configuration into go-redis options. A URL, when
// set, wins over host and port.
func Options(cfg config.RedisConfig) (*redis.Options, error) {
	var opt *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	opt.PoolSize = cfg.PoolSize
	opt.MinIdleConns = cfg.MinIdleConns
	opt.MaxRetries = cfg.MaxRetries
	opt.MinRetryBackoff = cfg.RetryDelay
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout
	opt.PoolTimeout = cfg.PoolTimeout

	return opt, nil
}

// NewClient creates a new Redis client with connection pooling
func NewClient(cfg config.RedisConfig, log zerolog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		config:        cfg,
		log:           log.With().Str("component", "redis").Logger(),
		reconnectChan: make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
	}

	client.connect()
	go client.healthCheckLoop()
	go client.reconnectLoop()

	return client
}

// connect establishes the Redis connection with configured options
func (c *Client) connect() {
	opt, err := Options(c.config)
	if err != nil {
		c.log.Warn().Err(err).Msg("falling back to host:port")
		fallback := c.config
		fallback.URL = ""
		opt, _ = Options(fallback)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()
	pingErr := client.Ping(ctx).Err()

	c.mu.Lock()
	c.client = client
	c.isConnected = pingErr == nil
	c.mu.Unlock()

	if pingErr != nil {
		c.log.Error().Err(pingErr).Str("addr", opt.Addr).Msg("redis connection test failed")
	} else {
		c.log.Info().Str("addr", opt.Addr).Msg("redis connected")
	}
}

// GetClient returns the Redis client instance (thread-safe)
func (c *Client) GetClient() *redis.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// IsConnected returns the current connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// HealthCheck pings Redis and schedules a reconnect when the ping fails
func (c *Client) HealthCheck(ctx context.Context) HealthStatus {
	client := c.GetClient()

	status := HealthStatus{
		IsConnected:    c.IsConnected(),
		ConnectionInfo: c.config.Addr(),
	}

	if client == nil {
		status.Error = "redis client not initialized"
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	err := client.Ping(ctx).Err()
	status.ResponseTime = time.Since(start)
	status.LastPing = time.Now()
	status.IsConnected = err == nil

	c.mu.Lock()
	c.isConnected = err == nil
	c.mu.Unlock()

	if err != nil {
		status.Error = err.Error()
		c.triggerReconnect()
	}

	return status
}

// triggerReconnect signals the reconnection goroutine
func (c *Client) triggerReconnect() {
	select {
	case c.reconnectChan <- struct{}{}:
	default:
	}
}

func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if status := c.HealthCheck(c.ctx); !status.IsConnected {
				c.log.Warn().Str("error", status.Error).Msg("redis health check failed")
			}
		}
	}
}

// reconnectLoop retries the connection with exponential backoff, capped at
// 30s, until it succeeds or the client is closed.
func (c *Client) reconnectLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.reconnectChan:
			if c.IsConnected() {
				continue
			}

			policy := backoff.NewExponentialBackOff()
			policy.InitialInterval = time.Second
			policy.MaxInterval = 30 * time.Second
			policy.MaxElapsedTime = 0

			err := backoff.RetryNotify(c.reconnect, backoff.WithContext(policy, c.ctx), func(err error, wait time.Duration) {
				c.log.Warn().Err(err).Dur("backoff", wait).Msg("redis reconnection failed")
			})
			if err == nil {
				c.log.Info().Msg("reconnected to redis")
			}
		}
	}
}

func (c *Client) reconnect() error {
	c.log.Info().Msg("attempting to reconnect to redis")

	c.mu.Lock()
	if c.client != nil {
		c.client.Close()
	}
	c.mu.Unlock()

	c.connect()

	if !c.IsConnected() {
		return errors.New("redis ping failed")
	}
	return nil
}

// Close gracefully shuts down the Redis client
func (c *Client) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// GetConnectionStats returns connection pool statistics
func (c *Client) GetConnectionStats() map[string]interface{} {
	client := c.GetClient()
	if client == nil {
		return map[string]interface{}{
			"error": "redis client not initialized",
		}
	}

	stats := client.PoolStats()
	return map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"totalConns":  stats.TotalConns,
		"idleConns":   stats.IdleConns,
		"staleConns":  stats.StaleConns,
		"isConnected": c.IsConnected(),
	}
}
