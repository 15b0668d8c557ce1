package cache

import (
	"context"
	"time"

	"streamgate/pkg/errors"
)

// Strategy names the caching profile of a content family. Each strategy
// carries its own key prefix and default TTL so callers never hardcode
// either at the call site.
type Strategy string

const (
	StrategyTrending        Strategy = "trending"
	StrategyRecommendations Strategy = "recommendations"
	StrategyPreferences     Strategy = "preferences"
	StrategySearch          Strategy = "search"
	StrategyChannel         Strategy = "channel"
)

type strategyProfile struct {
	prefix string
	ttl    time.Duration
}

var strategyProfiles = map[Strategy]strategyProfile{
	StrategyTrending:        {prefix: "trending", ttl: 10 * time.Minute},
	StrategyRecommendations: {prefix: "recs", ttl: 15 * time.Minute},
	StrategyPreferences:     {prefix: "prefs", ttl: time.Hour},
	StrategySearch:          {prefix: "search", ttl: 5 * time.Minute},
	StrategyChannel:         {prefix: "channel", ttl: 30 * time.Minute},
}

// Manager binds strategies to a cache service so handlers address the cache
// by content family rather than by raw key and TTL.
type Manager struct {
	cache *Service
}

func NewManager(cache *Service) (*Manager, error) {
	if cache == nil {
		return nil, errors.New(errors.CodeInternal, "cache service is required")
	}
	return &Manager{cache: cache}, nil
}

// Key builds the store key for a strategy from its parts. Unknown strategies
// still yield a usable key under their own name so callers degrade safely.
func (m *Manager) Key(strategy Strategy, parts ...string) string {
	profile, ok := strategyProfiles[strategy]
	if !ok {
		return GenerateKey(string(strategy), parts...)
	}
	return GenerateKey(profile.prefix, parts...)
}

// TTL returns the strategy's configured lifetime, or a conservative default
// for strategies the table does not know.
func (m *Manager) TTL(strategy Strategy) time.Duration {
	profile, ok := strategyProfiles[strategy]
	if !ok {
		return 5 * time.Minute
	}
	return profile.ttl
}

// Fetch is GetOrSet addressed by strategy: key parts and TTL come from the
// strategy profile, the factory supplies the value on a miss.
func Fetch[T any](ctx context.Context, m *Manager, strategy Strategy, parts []string, factory func(ctx context.Context) (T, error)) (T, error) {
	return GetOrSet(ctx, m.cache, m.Key(strategy, parts...), m.TTL(strategy), factory)
}

// Invalidate drops every cached entry under a strategy's prefix and returns
// the number of entries removed.
func (m *Manager) Invalidate(ctx context.Context, strategy Strategy) int {
	profile, ok := strategyProfiles[strategy]
	if !ok {
		return 0
	}
	return m.cache.DelPattern(ctx, profile.prefix+":*")
}

// InvalidateKey drops one entry addressed by strategy and parts.
func (m *Manager) InvalidateKey(ctx context.Context, strategy Strategy, parts ...string) {
	m.cache.Del(ctx, m.Key(strategy, parts...))
}

// Cache exposes the underlying service for direct operations.
func (m *Manager) Cache() *Service {
	return m.cache
}
