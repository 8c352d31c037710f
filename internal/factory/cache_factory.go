package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/adapters/cache"
	"github.com/armadio/wardrobe-ai-gateway/internal/config"
	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// CacheFactory creates analysis caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAnalysisCache creates an analysis cache based on the configuration
func (f *CacheFactory) CreateAnalysisCache() (core.AnalysisCache, error) {
	cacheType := f.cfg.GetString("cache.type")
	cleanupFreq, err := f.cfg.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}

	switch cacheType {
	case "memory":
		return cache.NewMemoryCache(f.logger, cleanupFreq), nil
	case "redis":
		redisCfg := f.cfg.GetRedis()
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		return cache.NewRedisCache(client, f.cfg.GetString("cache.key_prefix"), f.logger), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("cache.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return f.withoutCache(cacheType, fmt.Errorf("failed to create SQLite directory: %w", err)), nil
		}
		c, err := cache.NewSQLiteCache(sqlitePath, f.logger, cleanupFreq)
		if err != nil {
			return f.withoutCache(cacheType, err), nil
		}
		return c, nil
	case "mysql":
		c, err := cache.NewMySQLCache(f.cfg.GetString("cache.mysql_dsn"), f.logger, cleanupFreq)
		if err != nil {
			return f.withoutCache(cacheType, err), nil
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}
}

// withoutCache logs a backend that could not be reached at startup and
// degrades to a cache-less service instead of refusing to start.
func (f *CacheFactory) withoutCache(cacheType string, err error) core.AnalysisCache {
	f.logger.Error("Analysis cache unavailable, continuing without cache",
		zap.Error(err),
		zap.String("cache_type", cacheType))
	return cache.NewNoopCache()
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() (time.Duration, error) {
	return f.cfg.GetDuration("cache.ttl")
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled")
}
