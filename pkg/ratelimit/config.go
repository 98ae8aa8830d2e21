package ratelimit

import (
	"strings"
	"time"
)

// Config holds the configuration for rate limiting
type Config struct {
	// Limits per endpoint category
	DefaultLimits map[string]RateLimit `json:"defaultLimits"`

	// Redis key prefix for rate limiting data
	RedisKeyPrefix string `json:"redisKeyPrefix"`

	// How often the in-memory limiter drops idle windows
	CleanupInterval time.Duration `json:"cleanupInterval"`

	Enabled bool `json:"enabled"`
}

const DefaultCategory = "default"

// DefaultConfig returns a default rate limiting configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultLimits: map[string]RateLimit{
			// Authentication endpoints - more restrictive
			"auth":       {RequestsPerMinute: 10, BurstSize: 5, WindowSize: time.Minute},
			"auth_login": {RequestsPerMinute: 5, BurstSize: 5, WindowSize: time.Minute},

			// Every chat message costs a language model call
			"chat_message": {RequestsPerMinute: 20, BurstSize: 20, WindowSize: time.Minute},
			"chat":         {RequestsPerMinute: 30, BurstSize: 30, WindowSize: time.Minute},

			"listings":        {RequestsPerMinute: 120, BurstSize: 120, WindowSize: time.Minute},
			"listings_write":  {RequestsPerMinute: 30, BurstSize: 30, WindowSize: time.Minute},
			"listings_verify": {RequestsPerMinute: 10, BurstSize: 10, WindowSize: time.Minute},

			"alerts":        {RequestsPerMinute: 60, BurstSize: 60, WindowSize: time.Minute},
			"alerts_create": {RequestsPerMinute: 20, BurstSize: 20, WindowSize: time.Minute},

			"users": {RequestsPerMinute: 60, BurstSize: 60, WindowSize: time.Minute},

			// Health check - very permissive
			"health": {RequestsPerMinute: 1000, BurstSize: 1000, WindowSize: time.Minute},

			DefaultCategory: {RequestsPerMinute: 60, BurstSize: 60, WindowSize: time.Minute},
		},
		RedisKeyPrefix:  "ratelimit:",
		CleanupInterval: 5 * time.Minute,
		Enabled:         true,
	}
}

// endpointCategories maps "METHOD route" to a category. Routes are gin route
// patterns; a trailing * matches any suffix.
var endpointCategories = map[string]string{
	"POST /api/v1/auth/login":    "auth_login",
	"POST /api/v1/auth/register": "auth",

	"POST /api/v1/chat/sessions/:id/messages": "chat_message",
	"POST /api/v1/chat/sessions":              "chat",
	"GET /api/v1/chat/*":                      "chat",

	"GET /api/v1/listings":                     "listings",
	"GET /api/v1/listings/*":                   "listings",
	"POST /api/v1/listings/:id/verify-logbook": "listings_verify",
	"POST /api/v1/listings*":                   "listings_write",
	"PUT /api/v1/listings/*":                   "listings_write",
	"PATCH /api/v1/listings/*":                 "listings_write",
	"DELETE /api/v1/listings/*":                "listings_write",
	"DELETE /api/v1/documents/*":               "listings_write",

	"GET /api/v1/alerts":      "alerts",
	"POST /api/v1/alerts":     "alerts_create",
	"PATCH /api/v1/alerts/*":  "alerts",
	"DELETE /api/v1/alerts/*": "alerts",

	"GET /api/v1/me*":   "users",
	"PATCH /api/v1/me*": "users",

	"GET /api/v1/health": "health",
}

// GetEndpointKey maps a request onto its rate limit category. Exact routes
// win over wildcard patterns, and longer patterns win over shorter ones.
func (c *Config) GetEndpointKey(route, method string) string {
	key := method + " " + route
	if category, ok := endpointCategories[key]; ok {
		return category
	}

	best, bestLen := DefaultCategory, -1
	for pattern, category := range endpointCategories {
		if matchesPattern(key, pattern) && len(pattern) > bestLen {
			best, bestLen = category, len(pattern)
		}
	}
	return best
}

// Limit returns the limit for a category, falling back to the default one.
func (c *Config) Limit(category string) RateLimit {
	if limit, ok := c.DefaultLimits[category]; ok {
		return limit
	}
	if limit, ok := c.DefaultLimits[DefaultCategory]; ok {
		return limit
	}
	return RateLimit{RequestsPerMinute: 60, BurstSize: 60, WindowSize: time.Minute}
}

// matchesPattern checks if a key matches a pattern with wildcards
func matchesPattern(key, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))
	}
	return key == pattern
}
