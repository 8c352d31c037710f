// Package ratelimit provides sliding-window admission control keyed by
// client address.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

// Store holds per-address request timestamps for the sliding window.
type Store interface {
	// Admit prunes timestamps older than the window, appends now when fewer
	// than limit remain, and reports whether the request was admitted. On
	// rejection it returns the oldest timestamp still inside the window.
	Admit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (admitted bool, oldest time.Time, err error)
}

// SlidingWindow is a sliding-window rate limiter over an injected store.
type SlidingWindow struct {
	store  Store
	window time.Duration
	limit  int
	logger *zap.Logger
	now    func() time.Time
}

// New creates a sliding-window limiter admitting up to limit requests per
// address within the trailing window.
func New(store Store, window time.Duration, limit int, logger *zap.Logger) *SlidingWindow {
	return &SlidingWindow{
		store:  store,
		window: window,
		limit:  limit,
		logger: logger,
		now:    time.Now,
	}
}

// Check reports whether the address is limited, and for how long. A store
// failure surfaces alongside an admitting decision: the limiter is a
// best-effort abuse guard, not a hard dependency of the request path, so
// callers log the error and proceed.
func (l *SlidingWindow) Check(ctx context.Context, clientAddr string) (core.RateLimitDecision, error) {
	now := l.now()

	admitted, oldest, err := l.store.Admit(ctx, clientAddr, now, l.window, l.limit)
	if err != nil {
		return core.RateLimitDecision{}, fmt.Errorf("rate limit store unavailable: %w", err)
	}
	if admitted {
		return core.RateLimitDecision{}, nil
	}

	// The oldest retained timestamp is still inside the window, so the
	// remaining wait is always positive.
	remaining := l.window - now.Sub(oldest)
	retryAfter := time.Duration(math.Ceil(remaining.Seconds())) * time.Second

	l.logger.Debug("Rate limit window full",
		zap.String("client", clientAddr),
		zap.Duration("retry_after", retryAfter))

	return core.RateLimitDecision{Limited: true, RetryAfter: retryAfter}, nil
}
