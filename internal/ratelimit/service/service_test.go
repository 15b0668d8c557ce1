package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"streamgate/internal/ratelimit/config"
	"streamgate/internal/ratelimit/models"
	"streamgate/internal/ratelimit/store/counter"
	"streamgate/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *counter.InMemoryCounterStore
	service *Service
	now     time.Time
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = counter.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	s.service, err = New(s.store, WithLogger(logger))
	s.Require().NoError(err)

	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TestNew() {
	s.Run("nil counter store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "counter store is required")
	})

	s.Run("options are applied", func() {
		cfg := config.DefaultConfig()
		svc, err := New(s.store, WithConfig(cfg))
		s.NoError(err)
		s.Same(cfg, svc.config)
	})
}

func (s *ServiceSuite) TestClassify() {
	cases := map[string]models.RouteClass{
		"/api/auth/login":       models.ClassAuth,
		"/api/media/trending":   models.ClassMedia,
		"/api/iptv/channels":    models.ClassMedia,
		"/api/search":           models.ClassSearch,
		"/api/user/profile":     models.ClassUser,
		"/api/history":          models.ClassUser,
		"/api/admin/ratelimit":  models.ClassAdmin,
		"/api/something/else":   models.ClassDefault,
		"/completely/unrelated": models.ClassDefault,
	}
	for path, want := range cases {
		s.Equal(want, s.service.Classify(path), "path %s", path)
	}
}

func (s *ServiceSuite) TestIsExempt() {
	s.True(s.service.IsExempt("/api/health"))
	s.True(s.service.IsExempt("/metrics"))
	s.True(s.service.IsExempt("/docs/openapi.json"))
	s.False(s.service.IsExempt("/api/media/trending"))
}

func (s *ServiceSuite) TestIdentify() {
	s.Run("authenticated identity wins over IP", func() {
		ctx := requestcontext.WithUserID(s.ctx, "42")
		ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.5", "test")

		key, role := s.service.Identify(ctx)
		s.Equal("user_42", key)
		s.Equal(models.RoleUser, role)
	})

	s.Run("role claim is carried through", func() {
		ctx := requestcontext.WithUserID(s.ctx, "42")
		ctx = requestcontext.WithUserRole(ctx, "premium")

		key, role := s.service.Identify(ctx)
		s.Equal("user_42", key)
		s.Equal(models.RolePremium, role)
	})

	s.Run("anonymous request keys by IP", func() {
		ctx := requestcontext.WithClientMetadata(s.ctx, "203.0.113.5", "test")

		key, role := s.service.Identify(ctx)
		s.Equal("ip_203.0.113.5", key)
		s.Equal(models.RoleAnonymous, role)
	})

	s.Run("unresolvable client degrades to shared bucket", func() {
		key, _ := s.service.Identify(s.ctx)
		s.Equal("ip_unknown", key)
	})
}

func (s *ServiceSuite) TestCheck() {
	s.Run("requests up to the limit are admitted", func() {
		policy, _ := s.service.Config().GetPolicy(models.ClassSearch)
		var decision *models.Decision
		var err error
		for i := 0; i < policy.MaxRequests; i++ {
			decision, err = s.service.Check(s.ctx, "user_1", models.ClassSearch, models.RoleUser)
			s.Require().NoError(err)
			s.True(decision.Allowed)
		}
		s.Equal(0, decision.Remaining)
	})

	s.Run("request over the limit is rejected with retry guidance", func() {
		policy, _ := s.service.Config().GetPolicy(models.ClassSearch)
		for i := 0; i < policy.MaxRequests; i++ {
			_, err := s.service.Check(s.ctx, "user_2", models.ClassSearch, models.RoleUser)
			s.Require().NoError(err)
		}

		decision, err := s.service.Check(s.ctx, "user_2", models.ClassSearch, models.RoleUser)
		s.Require().NoError(err)
		s.False(decision.Allowed)
		s.Equal(0, decision.Remaining)
		s.Positive(decision.RetryAfter)
		s.Equal(int(policy.Window.Seconds()), decision.RetryAfter)
	})

	s.Run("window expiry resets the counter", func() {
		policy, _ := s.service.Config().GetPolicy(models.ClassAuth)
		for i := 0; i < policy.MaxRequests+1; i++ {
			_, err := s.service.Check(s.ctx, "ip_198.51.100.9", models.ClassAuth, models.RoleAnonymous)
			s.Require().NoError(err)
		}

		later := requestcontext.WithTime(context.Background(), s.now.Add(policy.Window+time.Second))
		decision, err := s.service.Check(later, "ip_198.51.100.9", models.ClassAuth, models.RoleAnonymous)
		s.Require().NoError(err)
		s.True(decision.Allowed)
		s.Equal(policy.MaxRequests-1, decision.Remaining)
	})

	s.Run("premium role doubles the effective limit", func() {
		policy, _ := s.service.Config().GetPolicy(models.ClassSearch)
		doubled := 2 * policy.MaxRequests

		var decision *models.Decision
		var err error
		for i := 0; i < doubled; i++ {
			decision, err = s.service.Check(s.ctx, "user_p", models.ClassSearch, models.RolePremium)
			s.Require().NoError(err)
			s.True(decision.Allowed)
		}

		decision, err = s.service.Check(s.ctx, "user_p", models.ClassSearch, models.RolePremium)
		s.Require().NoError(err)
		s.False(decision.Allowed)
		s.Equal(doubled, decision.Limit)
	})

	s.Run("classes consume independent quotas", func() {
		_, err := s.service.Check(s.ctx, "user_3", models.ClassSearch, models.RoleUser)
		s.Require().NoError(err)

		decision, err := s.service.Check(s.ctx, "user_3", models.ClassMedia, models.RoleUser)
		s.Require().NoError(err)
		policy, _ := s.service.Config().GetPolicy(models.ClassMedia)
		s.Equal(policy.MaxRequests-1, decision.Remaining)
	})

	s.Run("allowlisted IP bypasses counting", func() {
		cfg := config.DefaultConfig()
		cfg.AllowlistedIPs["203.0.113.99"] = true
		svc, err := New(counter.New(), WithConfig(cfg))
		s.Require().NoError(err)

		ctx := requestcontext.WithClientMetadata(s.ctx, "203.0.113.99", "test")
		for i := 0; i < 500; i++ {
			decision, err := svc.Check(ctx, "ip_203.0.113.99", models.ClassAuth, models.RoleAnonymous)
			s.Require().NoError(err)
			s.True(decision.Allowed)
			s.True(decision.Bypassed)
		}
	})

	s.Run("counter store error propagates", func() {
		svc, err := New(failingStore{})
		s.Require().NoError(err)

		_, err = svc.Check(s.ctx, "user_4", models.ClassMedia, models.RoleUser)
		s.Error(err)
	})
}

type failingStore struct{}

func (failingStore) Increment(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func (failingStore) Reset(context.Context, string) error {
	return errors.New("store down")
}

func (failingStore) Count(context.Context, string) (int, error) {
	return 0, errors.New("store down")
}
