package secrets

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// CachedSource memoizes the first key successfully retrieved from the
// wrapped source for the life of the process. Failures are never cached, so
// the next request retries the underlying store. Rotation requires a restart.
type CachedSource struct {
	inner  core.SecretSource
	logger *zap.Logger

	mu  sync.RWMutex
	key string
}

// NewCachedSource wraps a secret source with process-lifetime memoization.
func NewCachedSource(inner core.SecretSource, logger *zap.Logger) *CachedSource {
	return &CachedSource{
		inner:  inner,
		logger: logger,
	}
}

// APIKey returns the memoized key, fetching it on first use. Concurrent
// first-time misses may fetch redundantly rather than block one another;
// the retrieval is idempotent so only the round trip is wasted.
func (s *CachedSource) APIKey(ctx context.Context) (string, error) {
	s.mu.RLock()
	key := s.key
	s.mu.RUnlock()
	if key != "" {
		return key, nil
	}

	key, err := s.inner.APIKey(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.key == "" {
		s.key = key
		s.logger.Debug("API key retrieved and memoized")
	}
	s.mu.Unlock()

	return key, nil
}
