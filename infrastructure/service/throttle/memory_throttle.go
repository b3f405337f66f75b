package throttle

import (
	"context"
	"sync"
	"time"
)

// MemoryThrottle is the single-instance fallback used when no Redis URL is
// configured. Stale entries are evicted on access.
type MemoryThrottle struct {
	mu            sync.Mutex
	attempts      map[string][]time.Time
	failures      map[string][]time.Time
	blocked       map[string]time.Time
	blockAfter    int
	blockDuration time.Duration
	now           func() time.Time
}

func NewMemoryThrottle(blockAfter int, blockDuration time.Duration) *MemoryThrottle {
	if blockAfter <= 0 {
		blockAfter = 5
	}
	if blockDuration <= 0 {
		blockDuration = 15 * time.Minute
	}
	return &MemoryThrottle{
		attempts:      map[string][]time.Time{},
		failures:      map[string][]time.Time{},
		blocked:       map[string]time.Time{},
		blockAfter:    blockAfter,
		blockDuration: blockDuration,
		now:           time.Now,
	}
}

func (t *MemoryThrottle) Allow(_ context.Context, scope, ip string, limit int, window time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := scope + ":" + ip
	now := t.now()
	kept := keepSince(t.attempts[key], now.Add(-window))
	kept = append(kept, now)
	t.attempts[key] = kept
	return len(kept) <= limit, nil
}

func (t *MemoryThrottle) RecordFailure(_ context.Context, ip string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	kept := keepSince(t.failures[ip], now.Add(-t.blockDuration))
	kept = append(kept, now)
	t.failures[ip] = kept
	if len(kept) >= t.blockAfter {
		t.blocked[ip] = now.Add(t.blockDuration)
	}
	return nil
}

func (t *MemoryThrottle) IsBlocked(_ context.Context, ip string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	until, ok := t.blocked[ip]
	if !ok {
		return false, nil
	}
	if t.now().After(until) {
		delete(t.blocked, ip)
		delete(t.failures, ip)
		return false, nil
	}
	return true, nil
}

func keepSince(stamps []time.Time, cutoff time.Time) []time.Time {
	kept := stamps[:0]
	for _, s := range stamps {
		if s.After(cutoff) {
			kept = append(kept, s)
		}
	}
	return kept
}
