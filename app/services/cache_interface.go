package services

import (
	"context"

	"github.com/petition-qc/app/models"
)

// CacheStats reports hit-rate counters for the admin stats endpoint.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ResultCache caches ranked search results keyed by normalized query plus
// limit. The registry is read-only during normal operation, so entries
// only go stale on re-import; the import path clears the cache when it
// finishes. Cache failures must degrade to a direct search, never fail
// the request.
type ResultCache interface {
	// Get returns the cached result list for key, with a found flag.
	Get(ctx context.Context, key string) ([]models.VoterMatch, bool, error)

	// Set stores the result list under key.
	Set(ctx context.Context, key string, results []models.VoterMatch) error

	// Clear drops every cached entry.
	Clear(ctx context.Context) error

	// Stats reports hit counters.
	Stats(ctx context.Context) (*CacheStats, error)

	// Close releases any underlying connection.
	Close() error
}
