// Package ratelimit holds the in-process fixed-window counter used when no
// Redis is configured. Counts are per process and lost on restart.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery bounds how often expired windows are purged.
const sweepEvery = time.Minute

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is a fixed-window counter keyed by string.
type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Incr records one hit for key and returns the count in the current window
// and the time left until it resets. It never fails.
func (s *MemoryStore) Incr(_ context.Context, key string, size time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(size)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt.Sub(now), nil
}

func (s *MemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepEvery {
		return
	}
	s.lastSweep = now
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
		}
	}
}
