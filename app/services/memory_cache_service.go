package services

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/petition-qc/app/models"
)

// MemoryCacheService is the in-process L1: a fixed-size LRU over ranked
// result lists. Safe for concurrent use; the LRU carries its own lock.
type MemoryCacheService struct {
	cache *lru.Cache[string, []models.VoterMatch]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCacheService builds an LRU cache of the given size.
func NewMemoryCacheService(size int) (*MemoryCacheService, error) {
	cache, err := lru.New[string, []models.VoterMatch](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}
	return &MemoryCacheService{cache: cache}, nil
}

// Get returns the cached result list for key.
func (m *MemoryCacheService) Get(_ context.Context, key string) ([]models.VoterMatch, bool, error) {
	if results, found := m.cache.Get(key); found {
		m.hits.Add(1)
		return results, true, nil
	}
	m.misses.Add(1)
	return nil, false, nil
}

// Set stores the result list under key.
func (m *MemoryCacheService) Set(_ context.Context, key string, results []models.VoterMatch) error {
	m.cache.Add(key, results)
	return nil
}

// Clear drops every entry and resets the counters.
func (m *MemoryCacheService) Clear(_ context.Context) error {
	m.cache.Purge()
	m.hits.Store(0)
	m.misses.Store(0)
	return nil
}

// Stats reports hit counters.
func (m *MemoryCacheService) Stats(_ context.Context) (*CacheStats, error) {
	hits, misses := m.hits.Load(), m.misses.Load()
	stats := &CacheStats{
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(m.cache.Len()),
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats, nil
}

// Close is a no-op for the in-process cache.
func (m *MemoryCacheService) Close() error { return nil }
