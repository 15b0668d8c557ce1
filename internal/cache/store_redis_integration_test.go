//go:build integration

package cache

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"streamgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	svc   *Service
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.ctx = context.Background()
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))

	svc, err := New(NewRedisStore(s.redis.Client), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.svc = svc
}

func (s *RedisStoreSuite) TestRoundTrip() {
	type payload struct {
		Name string `json:"name"`
	}

	s.svc.Set(s.ctx, "channel:ch1", payload{Name: "news"}, time.Minute)

	var got payload
	s.Require().True(s.svc.Get(s.ctx, "channel:ch1", &got))
	s.Equal("news", got.Name)
}

func (s *RedisStoreSuite) TestDelPatternScansAllMatches() {
	// More keys than one SCAN batch returns.
	for i := 0; i < 250; i++ {
		s.svc.Set(s.ctx, GenerateKey("search", "q", strconv.Itoa(i)), i, time.Minute)
	}
	s.svc.Set(s.ctx, "trending:day", "keep", time.Minute)

	s.Equal(250, s.svc.DelPattern(s.ctx, "search:*"))

	var kept string
	s.True(s.svc.Get(s.ctx, "trending:day", &kept))
}

func (s *RedisStoreSuite) TestExpiry() {
	s.svc.Set(s.ctx, "search:go", "short lived", time.Second)

	var got string
	s.Require().True(s.svc.Get(s.ctx, "search:go", &got))

	time.Sleep(1500 * time.Millisecond)
	s.False(s.svc.Get(s.ctx, "search:go", &got))
}

func (s *RedisStoreSuite) TestIncrAndTTL() {
	s.Equal(int64(1), s.svc.Incr(s.ctx, "views:ch1"))
	s.Equal(int64(2), s.svc.Incr(s.ctx, "views:ch1"))

	s.True(s.svc.Expire(s.ctx, "views:ch1", time.Minute))
	ttl := s.svc.TTL(s.ctx, "views:ch1")
	s.Greater(ttl, 50*time.Second)
}

func (s *RedisStoreSuite) TestCompressedRoundTrip() {
	svc, err := New(NewRedisStore(s.redis.Client), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), WithCompression(true))
	s.Require().NoError(err)

	long := make([]string, 200)
	for i := range long {
		long[i] = "repetitive catalog entry"
	}
	svc.Set(s.ctx, "trending:day", long, time.Minute)

	var got []string
	s.Require().True(svc.Get(s.ctx, "trending:day", &got))
	s.Len(got, 200)
}
