package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	ctx := context.Background()
	analysis := &core.GarmentAnalysis{Category: "jacket", Color: "navy"}

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "k1", analysis, time.Hour))

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, analysis, got)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	ctx := context.Background()
	analysis := &core.GarmentAnalysis{Category: "jacket"}
	require.NoError(t, c.Set(ctx, "k1", analysis, time.Hour))

	// Mutating the stored value must not change the cached copy.
	analysis.Category = "dress"

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "jacket", got.Category)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k1", &core.GarmentAnalysis{Category: "jacket"}, time.Millisecond))

	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNoopCacheNeverStores(t *testing.T) {
	c := NewNoopCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", &core.GarmentAnalysis{Category: "jacket"}, time.Hour))

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "expired", &core.GarmentAnalysis{}, time.Millisecond))
	require.NoError(t, c.Set(ctx, "live", &core.GarmentAnalysis{}, time.Hour))

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, c.Cleanup(ctx))

	c.mu.RLock()
	defer c.mu.RUnlock()
	require.NotContains(t, c.entries, "expired")
	require.Contains(t, c.entries, "live")
}
