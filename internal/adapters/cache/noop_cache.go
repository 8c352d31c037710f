package cache

import (
	"context"
	"time"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// NoopCache stands in when the configured backend is unavailable at startup.
// Every lookup is a miss and writes are dropped, so the service runs
// cache-less rather than not at all.
type NoopCache struct{}

// NewNoopCache creates a cache that never stores anything.
func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

// Get always reports a miss.
func (NoopCache) Get(_ context.Context, _ string) (*core.GarmentAnalysis, bool, error) {
	return nil, false, nil
}

// Set drops the entry.
func (NoopCache) Set(_ context.Context, _ string, _ *core.GarmentAnalysis, _ time.Duration) error {
	return nil
}
