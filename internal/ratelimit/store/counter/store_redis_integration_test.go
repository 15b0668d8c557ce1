//go:build integration

package counter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"streamgate/pkg/testutil/containers"
)

type RedisCounterStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisCounterStore
	ctx   context.Context
}

func TestRedisCounterStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisCounterStoreSuite))
}

func (s *RedisCounterStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedis(s.redis.Client)
	s.ctx = context.Background()
}

func (s *RedisCounterStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisCounterStoreSuite) TestIncrement() {
	count, resetAt, err := s.store.Increment(s.ctx, "rl:media:user_1", time.Minute)
	s.Require().NoError(err)
	s.Equal(1, count)
	s.WithinDuration(time.Now().Add(time.Minute), resetAt, 5*time.Second)

	count, _, err = s.store.Increment(s.ctx, "rl:media:user_1", time.Minute)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *RedisCounterStoreSuite) TestWindowExpiry() {
	for i := 0; i < 3; i++ {
		_, _, err := s.store.Increment(s.ctx, "rl:auth:ip_203.0.113.5", time.Second)
		s.Require().NoError(err)
	}

	time.Sleep(1500 * time.Millisecond)

	count, _, err := s.store.Increment(s.ctx, "rl:auth:ip_203.0.113.5", time.Second)
	s.Require().NoError(err)
	s.Equal(1, count, "counter should restart after the window TTL expires")
}

func (s *RedisCounterStoreSuite) TestReset() {
	_, _, err := s.store.Increment(s.ctx, "rl:user:user_2", time.Minute)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Reset(s.ctx, "rl:user:user_2"))

	count, err := s.store.Count(s.ctx, "rl:user:user_2")
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *RedisCounterStoreSuite) TestCountAbsentKey() {
	count, err := s.store.Count(s.ctx, "rl:media:ip_absent")
	s.Require().NoError(err)
	s.Equal(0, count)
}
