package services

import (
	"context"
	"time"

	"carmarket-backend/internal/metrics"
)

// ExpireStaleListings expires active listings that have been live for longer
// than maxAge and drops them from the cache. A non-positive maxAge disables
// expiry.
func (s *ListingService) ExpireStaleListings(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	ids, err := s.listings.ExpireStale(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if s.cache != nil {
			if err := s.cache.InvalidateListing(ctx, id); err != nil {
				s.log.Warn().Err(err).Str("listing_id", id).Msg("failed to invalidate listing cache")
			}
		}
	}
	if len(ids) > 0 {
		metrics.ListingsExpiredTotal.Add(float64(len(ids)))
		s.invalidateSearches(ctx)
		s.log.Info().Int("count", len(ids)).Msg("expired stale listings")
	}

	return len(ids), nil
}
