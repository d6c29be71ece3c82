package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/petition-qc/app/models"
)

// RedisCacheService is the shared L2: serialized result lists in Redis
// with a TTL, so all API replicas see the same warm cache.
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService connects to Redis and verifies the connection.
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: "petition_qc:search:",
		ttl:    ttl,
	}, nil
}

// Get returns the cached result list for key.
func (r *RedisCacheService) Get(ctx context.Context, key string) ([]models.VoterMatch, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		r.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var results []models.VoterMatch
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		// Corrupt entry; treat as a miss and let Set overwrite it.
		r.logger.Warn("dropping corrupt cache entry", zap.String("key", key), zap.Error(err))
		r.misses.Add(1)
		return nil, false, nil
	}

	r.hits.Add(1)
	return results, true, nil
}

// Set stores the result list under key with the configured TTL.
func (r *RedisCacheService) Set(ctx context.Context, key string, results []models.VoterMatch) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear drops every entry under the cache prefix.
func (r *RedisCacheService) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	r.hits.Store(0)
	r.misses.Store(0)
	return nil
}

// Stats reports hit counters and the entry count under the prefix.
func (r *RedisCacheService) Stats(ctx context.Context) (*CacheStats, error) {
	var items int64
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		items++
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	hits, misses := r.hits.Load(), r.misses.Load()
	stats := &CacheStats{
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: items,
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats, nil
}

// Close releases the Redis connection.
func (r *RedisCacheService) Close() error { return r.client.Close() }
