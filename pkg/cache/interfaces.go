package cache

import (
	"context"
	"time"

	"carmarket-backend/internal/models"
)

// CacheManager caches listing reads. A miss returns (nil, nil).
type CacheManager interface {
	// Listing detail
	GetListing(ctx context.Context, listingID string) (*models.Listing, error)
	SetListing(ctx context.Context, listing *models.Listing, ttl time.Duration) error
	InvalidateListing(ctx context.Context, listingID string) error

	// Search results, keyed by the filter object
	GetSearchResults(ctx context.Context, filters models.SearchFilters) ([]*models.Listing, error)
	SetSearchResults(ctx context.Context, filters models.SearchFilters, listings []*models.Listing, ttl time.Duration) error
	InvalidateSearchResults(ctx context.Context) error

	// Generic operations
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Tag operations
	TagKey(ctx context.Context, key string, tags ...string) error
	InvalidateByTag(ctx context.Context, tag string) error

	GetCacheStats(ctx context.Context) CacheStats
	HealthCheck(ctx context.Context) error
}

// CacheStats provides cache performance metrics
type CacheStats struct {
	HitRate       float64 `json:"hitRate"`
	MissRate      float64 `json:"missRate"`
	MemoryUsage   int64   `json:"memoryUsage"`
	KeyCount      int     `json:"keyCount"`
	EvictionCount int     `json:"evictionCount"`
	TotalHits     int64   `json:"totalHits"`
	TotalMisses   int64   `json:"totalMisses"`
}
