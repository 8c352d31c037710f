package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// RedisCache is a Redis implementation of the AnalysisCache interface.
// Analyses are stored as JSON text; expiry is left to the store's TTL.
type RedisCache struct {
	r      redis.Cmdable
	prefix string
	logger *zap.Logger
}

// NewRedisCache creates a Redis-backed analysis cache. The prefix namespaces
// keys so the cache can share a database with the rate limiter.
func NewRedisCache(r redis.Cmdable, prefix string, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		r:      r,
		prefix: prefix,
		logger: logger,
	}
}

func (c *RedisCache) namespaced(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Get retrieves a cached analysis by content key
func (c *RedisCache) Get(ctx context.Context, key string) (*core.GarmentAnalysis, bool, error) {
	payload, err := c.r.Get(ctx, c.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var analysis core.GarmentAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		c.logger.Error("Discarding corrupt cache entry",
			zap.Error(err),
			zap.String("key", key))
		return nil, false, nil
	}

	return &analysis, true, nil
}

// Set stores an analysis under the content key
func (c *RedisCache) Set(ctx context.Context, key string, analysis *core.GarmentAnalysis, ttl time.Duration) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis: %w", err)
	}

	if err := c.r.Set(ctx, c.namespaced(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}
