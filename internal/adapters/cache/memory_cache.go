package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

type memoryEntry struct {
	analysis  *core.GarmentAnalysis
	expiresAt time.Time
}

// MemoryCache is an in-memory implementation of the AnalysisCache interface
type MemoryCache struct {
	entries     map[string]memoryEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     make(map[string]memoryEntry),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache
}

// Get retrieves a cached analysis by content key
func (c *MemoryCache) Get(_ context.Context, key string) (*core.GarmentAnalysis, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}

	// Check if entry has expired
	if time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}

	analysis := *entry.analysis
	return &analysis, true, nil
}

// Set stores an analysis under the content key
func (c *MemoryCache) Set(_ context.Context, key string, analysis *core.GarmentAnalysis, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *analysis
	c.entries[key] = memoryEntry{
		analysis:  &stored,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	close(c.stopCh)
}
