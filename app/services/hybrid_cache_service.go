package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
)

// HybridCacheService layers the in-process LRU (L1) over Redis (L2).
// L2 misses of L1 hits are backfilled asynchronously so one replica's
// searches warm the others.
type HybridCacheService struct {
	l1     *MemoryCacheService
	l2     *RedisCacheService
	logger *zap.Logger
}

// NewHybridCacheService wires the two cache tiers.
func NewHybridCacheService(l1 *MemoryCacheService, l2 *RedisCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{l1: l1, l2: l2, logger: logger}
}

// Get checks L1 first, then L2; an L2 hit is copied up into L1.
func (h *HybridCacheService) Get(ctx context.Context, key string) ([]models.VoterMatch, bool, error) {
	if results, found, err := h.l1.Get(ctx, key); err == nil && found {
		return results, true, nil
	}

	results, found, err := h.l2.Get(ctx, key)
	if err != nil {
		// Redis trouble is a miss, not a search failure.
		h.logger.Warn("L2 cache error, treating as miss", zap.Error(err))
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}

	if err := h.l1.Set(ctx, key, results); err != nil {
		h.logger.Warn("L1 backfill failed", zap.Error(err))
	}
	return results, true, nil
}

// Set writes both tiers; the L2 write happens off the request path.
func (h *HybridCacheService) Set(ctx context.Context, key string, results []models.VoterMatch) error {
	if err := h.l1.Set(ctx, key, results); err != nil {
		return err
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.l2.Set(bgCtx, key, results); err != nil {
			h.logger.Warn("L2 cache write failed", zap.String("key", key), zap.Error(err))
		}
	}()
	return nil
}

// Clear empties both tiers.
func (h *HybridCacheService) Clear(ctx context.Context) error {
	if err := h.l1.Clear(ctx); err != nil {
		return err
	}
	return h.l2.Clear(ctx)
}

// Stats merges the counters of both tiers.
func (h *HybridCacheService) Stats(ctx context.Context) (*CacheStats, error) {
	l1Stats, err := h.l1.Stats(ctx)
	if err != nil {
		return nil, err
	}
	l2Stats, err := h.l2.Stats(ctx)
	if err != nil {
		// Report L1 alone when Redis is unreachable.
		h.logger.Warn("L2 stats unavailable", zap.Error(err))
		return l1Stats, nil
	}

	stats := &CacheStats{
		TotalHits:  l1Stats.TotalHits + l2Stats.TotalHits,
		TotalMiss:  l2Stats.TotalMiss,
		TotalItems: l2Stats.TotalItems,
	}
	if total := stats.TotalHits + stats.TotalMiss; total > 0 {
		stats.HitRate = float64(stats.TotalHits) / float64(total)
	}
	return stats, nil
}

// Close closes both tiers.
func (h *HybridCacheService) Close() error {
	if err := h.l1.Close(); err != nil {
		return err
	}
	return h.l2.Close()
}
