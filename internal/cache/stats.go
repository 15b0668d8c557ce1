package cache

import (
	"sync"
	"sync/atomic"
)

// Stats accumulates process-local hit/miss counts. The totals use atomics and
// the per-prefix breakdown a small mutex; accounting is advisory, never used
// for eviction decisions.
type Stats struct {
	hits   atomic.Int64
	misses atomic.Int64

	mu       sync.Mutex
	byPrefix map[string]*prefixStats
}

type prefixStats struct {
	Hits   int64
	Misses int64
}

// Snapshot is a point-in-time read of the accumulated statistics.
type Snapshot struct {
	Hits     int64                   `json:"hits"`
	Misses   int64                   `json:"misses"`
	HitRate  float64                 `json:"hit_rate"`
	ByPrefix map[string]PrefixCounts `json:"by_prefix"`
}

// PrefixCounts breaks hits and misses down by key prefix (the segment before
// the first ':').
type PrefixCounts struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

func NewStats() *Stats {
	return &Stats{byPrefix: make(map[string]*prefixStats)}
}

func (s *Stats) recordHit(key string) {
	s.hits.Add(1)
	s.record(key, true)
}

func (s *Stats) recordMiss(key string) {
	s.misses.Add(1)
	s.record(key, false)
}

func (s *Stats) record(key string, hit bool) {
	prefix := keyPrefix(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.byPrefix[prefix]
	if !ok {
		ps = &prefixStats{}
		s.byPrefix[prefix] = ps
	}
	if hit {
		ps.Hits++
	} else {
		ps.Misses++
	}
}

// Snapshot returns the current counters and derived hit rate.
func (s *Stats) Snapshot() Snapshot {
	hits := s.hits.Load()
	misses := s.misses.Load()

	snap := Snapshot{
		Hits:     hits,
		Misses:   misses,
		ByPrefix: make(map[string]PrefixCounts),
	}
	if total := hits + misses; total > 0 {
		snap.HitRate = float64(hits) / float64(total)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for prefix, ps := range s.byPrefix {
		snap.ByPrefix[prefix] = PrefixCounts{Hits: ps.Hits, Misses: ps.Misses}
	}
	return snap
}

// Reset clears all counters. Operator action only; stats otherwise accumulate
// for the life of the process.
func (s *Stats) Reset() {
	s.hits.Store(0)
	s.misses.Store(0)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPrefix = make(map[string]*prefixStats)
}

func keyPrefix(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}
