package cache

import "time"

// CacheConfig holds configuration for cache TTL values and key layout
type CacheConfig struct {
	ListingTTL time.Duration `json:"listingTTL"`
	SearchTTL  time.Duration `json:"searchTTL"`
	TagTTL     time.Duration `json:"tagTTL"`
	KeyPrefix  string        `json:"keyPrefix"`
	TagPrefix  string        `json:"tagPrefix"`
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ListingTTL: 5 * time.Minute,
		SearchTTL:  1 * time.Minute,
		TagTTL:     10 * time.Minute, // tags outlive the data they point at
		KeyPrefix:  "carmarket:",
		TagPrefix:  "carmarket_tag:",
	}
}

// GetTTLForDataType returns the TTL for "listing" or "search" entries
func (c CacheConfig) GetTTLForDataType(dataType string) time.Duration {
	switch dataType {
	case "listing":
		return c.ListingTTL
	case "search":
		return c.SearchTTL
	default:
		return c.SearchTTL
	}
}
