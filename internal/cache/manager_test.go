package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ManagerSuite struct {
	suite.Suite

	manager *Manager
	ctx     context.Context
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	svc, err := New(NewMemoryStore(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)

	manager, err := NewManager(svc)
	s.Require().NoError(err)
	s.manager = manager
	s.ctx = context.Background()
}

func (s *ManagerSuite) TestNewRequiresService() {
	_, err := NewManager(nil)
	s.Require().Error(err)
}

func (s *ManagerSuite) TestKeyUsesStrategyPrefix() {
	s.Equal("trending:day", s.manager.Key(StrategyTrending, "day"))
	s.Equal("recs:user_42:drama", s.manager.Key(StrategyRecommendations, "user_42", "drama"))
	s.Equal("search:go_concurrency", s.manager.Key(StrategySearch, "go concurrency"))
}

func (s *ManagerSuite) TestKeyUnknownStrategy() {
	s.Equal("sessions:abc", s.manager.Key(Strategy("sessions"), "abc"))
}

func (s *ManagerSuite) TestTTLPerStrategy() {
	s.Equal(10*time.Minute, s.manager.TTL(StrategyTrending))
	s.Equal(time.Hour, s.manager.TTL(StrategyPreferences))
	s.Equal(5*time.Minute, s.manager.TTL(Strategy("unknown")))
}

func (s *ManagerSuite) TestFetchCachesUnderStrategyKey() {
	calls := 0
	fetch := func() ([]string, error) {
		return Fetch(s.ctx, s.manager, StrategySearch, []string{"go"}, func(context.Context) ([]string, error) {
			calls++
			return []string{"result"}, nil
		})
	}

	got, err := fetch()
	s.Require().NoError(err)
	s.Equal([]string{"result"}, got)

	_, err = fetch()
	s.Require().NoError(err)
	s.Equal(1, calls)

	var cached []string
	s.True(s.manager.Cache().Get(s.ctx, "search:go", &cached))
}

func (s *ManagerSuite) TestInvalidate() {
	cache := s.manager.Cache()
	cache.Set(s.ctx, s.manager.Key(StrategySearch, "go"), []string{"a"}, time.Minute)
	cache.Set(s.ctx, s.manager.Key(StrategySearch, "rust"), []string{"b"}, time.Minute)
	cache.Set(s.ctx, s.manager.Key(StrategyTrending, "day"), []string{"c"}, time.Minute)

	s.Equal(2, s.manager.Invalidate(s.ctx, StrategySearch))

	var got []string
	s.False(cache.Get(s.ctx, "search:go", &got))
	s.True(cache.Get(s.ctx, "trending:day", &got))
}

func (s *ManagerSuite) TestInvalidateKey() {
	cache := s.manager.Cache()
	cache.Set(s.ctx, s.manager.Key(StrategyChannel, "ch1"), "stream", time.Minute)

	s.manager.InvalidateKey(s.ctx, StrategyChannel, "ch1")

	var got string
	s.False(cache.Get(s.ctx, "channel:ch1", &got))
}
