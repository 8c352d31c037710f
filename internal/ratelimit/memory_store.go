package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-address timestamp lists in process memory. Entries
// self-prune on access; distinct addresses are never evicted, so state grows
// with the address population (acceptable for a best-effort abuse guard).
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

// NewMemoryStore creates a new in-memory sliding-window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]time.Time),
	}
}

// Admit implements Store. The prune-count-append sequence runs under one
// lock so concurrent requests from the same address cannot both slip past
// the limit.
func (s *MemoryStore) Admit(_ context.Context, key string, now time.Time, window time.Duration, limit int) (bool, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	recent := s.entries[key][:0]
	for _, ts := range s.entries[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= limit {
		s.entries[key] = recent
		return false, recent[0], nil
	}

	s.entries[key] = append(recent, now)
	return true, time.Time{}, nil
}
