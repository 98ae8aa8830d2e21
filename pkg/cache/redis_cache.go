package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"carmarket-backend/internal/models"

	goredis "github.com/redis/go-redis/v9"
)

const searchTag = "search"

// RedisCacheManager implements CacheManager using Redis
type RedisCacheManager struct {
	source ClientSource
	config CacheConfig
	stats  *cacheStats
}

// cacheStats tracks cache performance metrics
type cacheStats struct {
	mu            sync.RWMutex
	totalHits     int64
	totalMisses   int64
	evictionCount int64
}

// NewRedisCacheManager creates a new Redis-backed cache manager
func NewRedisCacheManager(source ClientSource, config CacheConfig) *RedisCacheManager {
	return &RedisCacheManager{
		source: source,
		config: config,
		stats:  &cacheStats{},
	}
}

func (r *RedisCacheManager) rdb() *goredis.Client {
	return r.source.GetClient()
}

// GetListing retrieves a listing from cache
func (r *RedisCacheManager) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	var listing models.Listing
	found, err := r.getJSON(ctx, r.buildKey("listing", listingID), &listing)
	if err != nil || !found {
		return nil, err
	}
	return &listing, nil
}

// SetListing stores a listing and tags it with its own id
func (r *RedisCacheManager) SetListing(ctx context.Context, listing *models.Listing, ttl time.Duration) error {
	id := listing.ID.Hex()
	key := r.buildKey("listing", id)

	if err := r.setJSON(ctx, key, listing, ttl); err != nil {
		return fmt.Errorf("failed to set listing in cache: %w", err)
	}

	return r.TagKey(ctx, key, "listing:"+id)
}

// InvalidateListing drops the listing detail and every search result set
// that contained it.
func (r *RedisCacheManager) InvalidateListing(ctx context.Context, listingID string) error {
	return r.InvalidateByTag(ctx, "listing:"+listingID)
}

func (r *RedisCacheManager) GetSearchResults(ctx context.Context, filters models.SearchFilters) ([]*models.Listing, error) {
	var listings []*models.Listing
	found, err := r.getJSON(ctx, r.buildKey("search", filters.CacheKey()), &listings)
	if err != nil || !found {
		return nil, err
	}
	if listings == nil {
		listings = []*models.Listing{}
	}
	return listings, nil
}

// SetSearchResults stores a result set. It is tagged with every listing it
// holds and with the shared search tag.
func (r *RedisCacheManager) SetSearchResults(ctx context.Context, filters models.SearchFilters, listings []*models.Listing, ttl time.Duration) error {
	key := r.buildKey("search", filters.CacheKey())

	if err := r.setJSON(ctx, key, listings, ttl); err != nil {
		return fmt.Errorf("failed to set search results in cache: %w", err)
	}

	tags := []string{searchTag}
	for _, l := range listings {
		tags = append(tags, "listing:"+l.ID.Hex())
	}
	return r.TagKey(ctx, key, tags...)
}

// InvalidateSearchResults drops every cached result set. Any listing write can
// change membership of any search.
func (r *RedisCacheManager) InvalidateSearchResults(ctx context.Context) error {
	return r.InvalidateByTag(ctx, searchTag)
}

// Get retrieves a generic value from cache and reports whether it was found
func (r *RedisCacheManager) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return r.getJSON(ctx, r.buildKey("generic", key), dest)
}

// Set stores a generic value in cache
func (r *RedisCacheManager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.setJSON(ctx, r.buildKey("generic", key), value, ttl)
}

// Delete removes a generic key from cache
func (r *RedisCacheManager) Delete(ctx context.Context, key string) error {
	cacheKey := r.buildKey("generic", key)
	if err := r.removeKeyTags(ctx, cacheKey); err != nil {
		return err
	}
	return r.rdb().Del(ctx, cacheKey).Err()
}

// TagKey associates tags with a cache key for invalidation
func (r *RedisCacheManager) TagKey(ctx context.Context, key string, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}

	pipe := r.rdb().Pipeline()

	keyTagsKey := r.buildTagKey("key_tags", key)
	members := make([]interface{}, len(tags))
	for i, tag := range tags {
		members[i] = tag
	}
	pipe.SAdd(ctx, keyTagsKey, members...)
	pipe.Expire(ctx, keyTagsKey, r.config.TagTTL)

	for _, tag := range tags {
		tagKeysKey := r.buildTagKey("tag_keys", tag)
		pipe.SAdd(ctx, tagKeysKey, key)
		pipe.Expire(ctx, tagKeysKey, r.config.TagTTL)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateByTag removes all keys associated with a tag
func (r *RedisCacheManager) InvalidateByTag(ctx context.Context, tag string) error {
	tagKeysKey := r.buildTagKey("tag_keys", tag)

	keys, err := r.rdb().SMembers(ctx, tagKeysKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get keys for tag %s: %w", tag, err)
	}

	if len(keys) == 0 {
		return nil
	}

	pipe := r.rdb().Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
		pipe.Del(ctx, r.buildTagKey("key_tags", key))
	}
	pipe.Del(ctx, tagKeysKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate keys for tag %s: %w", tag, err)
	}

	r.stats.mu.Lock()
	r.stats.evictionCount += int64(len(keys))
	r.stats.mu.Unlock()

	return nil
}

// GetCacheStats returns cache performance statistics
func (r *RedisCacheManager) GetCacheStats(ctx context.Context) CacheStats {
	r.stats.mu.RLock()
	totalHits := r.stats.totalHits
	totalMisses := r.stats.totalMisses
	evictionCount := r.stats.evictionCount
	r.stats.mu.RUnlock()

	total := totalHits + totalMisses
	var hitRate, missRate float64
	if total > 0 {
		hitRate = float64(totalHits) / float64(total)
		missRate = float64(totalMisses) / float64(total)
	}

	var memoryUsage int64
	if info, err := r.rdb().Info(ctx, "memory").Result(); err == nil {
		for _, line := range strings.Split(info, "\n") {
			if strings.HasPrefix(line, "used_memory:") {
				val := strings.TrimSpace(strings.TrimPrefix(line, "used_memory:"))
				if n, err := strconv.ParseInt(val, 10, 64); err == nil {
					memoryUsage = n
				}
			}
		}
	}

	keyCount := 0
	iter := r.rdb().Scan(ctx, 0, r.config.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keyCount++
	}

	return CacheStats{
		HitRate:       hitRate,
		MissRate:      missRate,
		MemoryUsage:   memoryUsage,
		KeyCount:      keyCount,
		EvictionCount: int(evictionCount),
		TotalHits:     totalHits,
		TotalMisses:   totalMisses,
	}
}

// HealthCheck verifies cache connectivity
func (r *RedisCacheManager) HealthCheck(ctx context.Context) error {
	return r.rdb().Ping(ctx).Err()
}

// Helper methods

func (r *RedisCacheManager) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.rdb().Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			r.recordMiss()
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}

	r.recordHit()
	return true, nil
}

func (r *RedisCacheManager) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	return r.rdb().Set(ctx, key, data, ttl).Err()
}

func (r *RedisCacheManager) buildKey(keyType, identifier string) string {
	return fmt.Sprintf("%s%s:%s", r.config.KeyPrefix, keyType, identifier)
}

func (r *RedisCacheManager) buildTagKey(keyType, identifier string) string {
	return fmt.Sprintf("%s%s:%s", r.config.TagPrefix, keyType, identifier)
}

func (r *RedisCacheManager) recordHit() {
	r.stats.mu.Lock()
	r.stats.totalHits++
	r.stats.mu.Unlock()
}

func (r *RedisCacheManager) recordMiss() {
	r.stats.mu.Lock()
	r.stats.totalMisses++
	r.stats.mu.Unlock()
}

func (r *RedisCacheManager) removeKeyTags(ctx context.Context, key string) error {
	keyTagsKey := r.buildTagKey("key_tags", key)

	tags, err := r.rdb().SMembers(ctx, keyTagsKey).Result()
	if err != nil {
		return err
	}

	pipe := r.rdb().Pipeline()
	for _, tag := range tags {
		pipe.SRem(ctx, r.buildTagKey("tag_keys", tag), key)
	}
	pipe.Del(ctx, keyTagsKey)

	_, err = pipe.Exec(ctx)
	return err
}
