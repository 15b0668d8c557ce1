// Package counter implements fixed-window request counters.
package counter

import (
	"context"
	"sync"
	"time"

	"streamgate/pkg/requestcontext"
)

// window holds one client's counter state. count restarts at 1 whenever the
// current time passes resetAt; otherwise it only ever increments.
type window struct {
	count   int
	resetAt time.Time
}

// InMemoryCounterStore implements CounterStore with a mutex-guarded map.
// Critical sections are short (map lookup plus integer arithmetic), so a
// single coarse lock keeps window semantics exact under concurrency: no
// double-reset and no lost increments at a window boundary.
type InMemoryCounterStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

// New creates a new in-memory counter store.
func New() *InMemoryCounterStore {
	return &InMemoryCounterStore{windows: make(map[string]*window)}
}

// Increment records one request and returns the in-window count and reset time.
// The observed "now" is request-scoped when set by middleware, which keeps all
// window arithmetic for one request on a single timestamp.
func (s *InMemoryCounterStore) Increment(ctx context.Context, key string, windowDur time.Duration) (int, time.Time, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(windowDur)}
		s.windows[key] = w
		return w.count, w.resetAt, nil
	}

	w.count++
	return w.count, w.resetAt, nil
}

// Reset clears the counter for a key.
func (s *InMemoryCounterStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// Count returns the current in-window count without consuming quota.
// Expired windows read as zero even before the sweeper removes them.
func (s *InMemoryCounterStore) Count(ctx context.Context, key string) (int, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		return 0, nil
	}
	return w.count, nil
}

// Sweep removes entries whose window has expired. Lazy eviction inside
// Increment already keeps results correct; sweeping just bounds memory for
// clients that never return.
func (s *InMemoryCounterStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if now.After(w.resetAt) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// SweepReporter receives the number of windows still tracked after a sweep.
type SweepReporter func(tracked int)

// StartSweeper runs Sweep at the given interval until ctx is cancelled.
// A non-nil report is called after every sweep with the surviving window
// count, for gauge-style observability.
func (s *InMemoryCounterStore) StartSweeper(ctx context.Context, interval time.Duration, report SweepReporter) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Sweep(now)
				if report != nil {
					report(s.Len())
				}
			}
		}
	}()
}

// Len reports the number of tracked windows, expired or not.
func (s *InMemoryCounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
