// Package cache provides a typed facade over a key-value backing store.
//
// The facade's central contract is graceful degradation: a backing-store
// failure is never surfaced to callers. Reads degrade to misses, writes to
// no-ops, deletions to zero counts. The one exception is GetOrSet's factory:
// a failure to compute the value is a real failure the caller must see.
package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

type Service struct {
	store    Store
	logger   *slog.Logger
	stats    *Stats
	metrics  *Metrics
	group    singleflight.Group
	compress bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCompression gzips values before storage. The transform is symmetric:
// compressed values are transparently decompressed on read, and values
// written without compression still read back correctly.
func WithCompression(enabled bool) Option {
	return func(s *Service) {
		s.compress = enabled
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("backing store is required")
	}

	svc := &Service{
		store:  store,
		stats:  NewStats(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Get fetches and deserializes a value into dest, which must be a pointer.
// Returns false on absence and on any backing-store or decode error; those
// are logged, never propagated.
func (s *Service) Get(ctx context.Context, key string, dest any) bool {
	if s.lookup(ctx, key, dest) {
		s.hit(key)
		return true
	}
	s.miss(key)
	return false
}

// lookup is Get without stats accounting, for internal re-checks that should
// not count as a second caller-visible lookup.
func (s *Service) lookup(ctx context.Context, key string, dest any) bool {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		}
		return false
	}

	data, err := s.decode(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "cache decode failed", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.WarnContext(ctx, "cache unmarshal failed", "key", key, "error", err)
		return false
	}

	return true
}

// Set serializes and stores a value with the given TTL. A failed cache write
// never fails the caller's primary operation; errors are logged and swallowed.
func (s *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.WarnContext(ctx, "cache marshal failed", "key", key, "error", err)
		return
	}

	if err := s.store.Set(ctx, key, s.encode(data), ttl); err != nil {
		s.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// Del removes a single key. No-op on error.
func (s *Service) Del(ctx context.Context, key string) {
	if _, err := s.store.Del(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "cache del failed", "key", key, "error", err)
	}
}

// DelPattern removes all keys matching a glob pattern and returns the count
// removed. Returns 0 on error or when nothing matches.
func (s *Service) DelPattern(ctx context.Context, pattern string) int {
	keys, err := s.store.Keys(ctx, pattern)
	if err != nil {
		s.logger.WarnContext(ctx, "cache pattern scan failed", "pattern", pattern, "error", err)
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	removed, err := s.store.Del(ctx, keys...)
	if err != nil {
		s.logger.WarnContext(ctx, "cache pattern delete failed", "pattern", pattern, "error", err)
		return 0
	}
	return removed
}

// MGet fetches a batch of keys, deserializing each present entry into a
// json.RawMessage slot. Absent or failed entries are nil; a batch failure
// degrades to all-nil.
func (s *Service) MGet(ctx context.Context, keys ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(keys))

	vals, err := s.store.MGet(ctx, keys...)
	if err != nil {
		s.logger.WarnContext(ctx, "cache mget failed", "error", err)
		for _, key := range keys {
			s.miss(key)
		}
		return out
	}

	for i, val := range vals {
		if val == nil {
			s.miss(keys[i])
			continue
		}
		data, err := s.decode(*val)
		if err != nil {
			s.miss(keys[i])
			continue
		}
		out[i] = json.RawMessage(data)
		s.hit(keys[i])
	}
	return out
}

// MSet stores a batch of values with one shared TTL. Best-effort: no
// atomicity is promised across the batch, and failures are swallowed.
func (s *Service) MSet(ctx context.Context, values map[string]any, ttl time.Duration) {
	pairs := make(map[string]string, len(values))
	for key, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			s.logger.WarnContext(ctx, "cache marshal failed", "key", key, "error", err)
			continue
		}
		pairs[key] = s.encode(data)
	}
	if len(pairs) == 0 {
		return
	}

	if err := s.store.MSet(ctx, pairs, ttl); err != nil {
		s.logger.WarnContext(ctx, "cache mset failed", "error", err)
	}
}

// Incr atomically increments a counter key, returning 0 on error.
func (s *Service) Incr(ctx context.Context, key string) int64 {
	n, err := s.store.IncrBy(ctx, key, 1)
	if err != nil {
		s.logger.WarnContext(ctx, "cache incr failed", "key", key, "error", err)
		return 0
	}
	return n
}

// Decr atomically decrements a counter key, returning 0 on error.
func (s *Service) Decr(ctx context.Context, key string) int64 {
	n, err := s.store.IncrBy(ctx, key, -1)
	if err != nil {
		s.logger.WarnContext(ctx, "cache decr failed", "key", key, "error", err)
		return 0
	}
	return n
}

// Expire updates a key's TTL, reporting whether the key existed. False on error.
func (s *Service) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := s.store.Expire(ctx, key, ttl)
	if err != nil {
		s.logger.WarnContext(ctx, "cache expire failed", "key", key, "error", err)
		return false
	}
	return ok
}

// TTL returns a key's remaining lifetime. Negative durations follow the redis
// convention (-1 no expiry, -2 absent); errors read as absent.
func (s *Service) TTL(ctx context.Context, key string) time.Duration {
	ttl, err := s.store.TTL(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "cache ttl failed", "key", key, "error", err)
		return -2 * time.Second
	}
	return ttl
}

// Stats returns a snapshot of the accumulated hit/miss statistics.
func (s *Service) Stats() Snapshot {
	return s.stats.Snapshot()
}

// ResetStats clears the accumulated statistics. Operator action only.
func (s *Service) ResetStats() {
	s.stats.Reset()
}

func (s *Service) hit(key string) {
	s.stats.recordHit(key)
	if s.metrics != nil {
		s.metrics.RecordHit()
	}
}

func (s *Service) miss(key string) {
	s.stats.recordMiss(key)
	if s.metrics != nil {
		s.metrics.RecordMiss()
	}
}

// GetOrSet returns the cached value for key, or computes, stores and returns
// it. Concurrent callers racing on the same absent key share one factory
// invocation per process via singleflight; cross-process races remain
// at-least-once. Factory errors propagate unchanged and nothing is cached.
func GetOrSet[T any](ctx context.Context, s *Service, key string, ttl time.Duration, factory func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if s.Get(ctx, key, &cached) {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		// Re-check under the flight lock: a concurrent caller may have
		// populated the key while this one waited.
		var again T
		if s.lookup(ctx, key, &again) {
			return again, nil
		}

		value, err := factory(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, value, ttl)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

var keyPartSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// GenerateKey builds a deterministic, store-safe key from a prefix and parts.
// Every disallowed character is replaced, so identical logical inputs always
// produce identical keys and user-controlled parts cannot inject separators.
func GenerateKey(prefix string, parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, keyPartSanitizer.ReplaceAllString(prefix, "_"))
	for _, part := range parts {
		segments = append(segments, keyPartSanitizer.ReplaceAllString(part, "_"))
	}
	return strings.Join(segments, ":")
}

// gzipMagic prefixes every compressed payload; its two bytes cannot open a
// JSON document, so plain values are never misdetected.
var gzipMagic = []byte{0x1f, 0x8b}

func (s *Service) encode(data []byte) string {
	if !s.compress {
		return string(data)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return string(data)
	}
	if err := zw.Close(); err != nil {
		return string(data)
	}
	return buf.String()
}

func (s *Service) decode(raw string) ([]byte, error) {
	data := []byte(raw)
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
