// Package service implements the admission decisions behind the rate limit
// middleware: route classification, client identification and fixed-window
// quota accounting.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"streamgate/internal/ratelimit/config"
	"streamgate/internal/ratelimit/metrics"
	"streamgate/internal/ratelimit/models"
	"streamgate/internal/ratelimit/ports"
	pkgerrors "streamgate/pkg/errors"
	"streamgate/pkg/requestcontext"
)

// CounterStore is re-exported so callers can depend on the service package
// without importing ports directly.
type CounterStore = ports.CounterStore

type Service struct {
	counters CounterStore
	config   *config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(counters CounterStore, opts ...Option) (*Service, error) {
	if counters == nil {
		return nil, errors.New("counter store is required")
	}

	svc := &Service{
		counters: counters,
		config:   config.DefaultConfig(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Classify maps a request path to its route class. Unmatched paths fall back
// to ClassDefault. Exemption (health, metrics, docs) is decided separately by
// IsExempt so exempt paths never mutate a counter.
func (s *Service) Classify(path string) models.RouteClass {
	switch {
	case strings.HasPrefix(path, "/api/auth"):
		return models.ClassAuth
	case strings.HasPrefix(path, "/api/media"), strings.HasPrefix(path, "/api/iptv"):
		return models.ClassMedia
	case strings.HasPrefix(path, "/api/search"):
		return models.ClassSearch
	case strings.HasPrefix(path, "/api/user"), strings.HasPrefix(path, "/api/history"), strings.HasPrefix(path, "/api/favorites"):
		return models.ClassUser
	case strings.HasPrefix(path, "/api/admin"):
		return models.ClassAdmin
	default:
		return models.ClassDefault
	}
}

// IsExempt reports whether a path bypasses admission entirely.
func (s *Service) IsExempt(path string) bool {
	return s.config.IsPathExempt(path)
}

// Identify derives the client key and role for the current request.
// An authenticated identity strictly wins over the IP-derived key, so a
// logged-in user is never counted by IP.
func (s *Service) Identify(ctx context.Context) (string, models.Role) {
	if userID := requestcontext.UserID(ctx); userID != "" {
		role := models.Role(requestcontext.UserRole(ctx))
		if role == "" {
			role = models.RoleUser
		}
		return models.UserClientKey(userID), role
	}
	return models.IPClientKey(requestcontext.ClientIP(ctx)), models.RoleAnonymous
}

// Check admits or rejects one request for the given client against the class
// policy, consuming quota when admitted. Quota headers are derivable from the
// decision regardless of outcome.
func (s *Service) Check(ctx context.Context, clientKey string, class models.RouteClass, role models.Role) (*models.Decision, error) {
	now := requestcontext.Now(ctx)

	policy, ok := s.config.GetPolicy(class)
	if !ok {
		// Default-deny: a class without a configured policy admits nothing.
		ports.LogAudit(ctx, s.logger, "rate_limit_config_missing",
			"client_key", clientKey,
			"route_class", class,
		)
		return &models.Decision{
			Allowed:    false,
			Limit:      0,
			Remaining:  0,
			ResetAt:    now,
			RetryAfter: 60,
		}, nil
	}

	limit := s.config.EffectiveLimit(policy, role)

	if ip := requestcontext.ClientIP(ctx); ip != "" && s.config.IsIPAllowlisted(ip) {
		if s.metrics != nil {
			s.metrics.RecordAllowlistBypass()
		}
		ports.LogAudit(ctx, s.logger, "allowlist_bypass",
			"client_key", clientKey,
			"route_class", class,
		)
		return &models.Decision{
			Allowed:   true,
			Bypassed:  true,
			Limit:     limit,
			Remaining: limit,
			ResetAt:   now.Add(policy.Window),
		}, nil
	}

	key := models.CounterKey(class, clientKey)
	count, resetAt, err := s.counters.Increment(ctx, key, policy.Window)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to check rate limit")
	}

	decision := &models.Decision{
		Limit:   limit,
		ResetAt: resetAt,
	}

	if count > limit {
		decision.Allowed = false
		decision.Remaining = 0
		decision.RetryAfter = retryAfterSeconds(now, resetAt)
		if s.metrics != nil {
			s.metrics.RecordRejected(string(class))
		}
		ports.LogAudit(ctx, s.logger, "rate_limit_exceeded",
			"client_key", clientKey,
			"route_class", class,
			"limit", limit,
			"window_seconds", int(policy.Window.Seconds()),
		)
		return decision, nil
	}

	decision.Allowed = true
	decision.Remaining = limit - count
	if s.metrics != nil {
		s.metrics.RecordAdmitted(string(class))
	}
	return decision, nil
}

// Message returns the configured rejection text for a class, falling back to
// the default class message.
func (s *Service) Message(class models.RouteClass) string {
	if policy, ok := s.config.GetPolicy(class); ok {
		return policy.Message
	}
	policy, _ := s.config.GetPolicy(models.ClassDefault)
	return policy.Message
}

// Config returns the immutable admission configuration for read-only surfaces.
func (s *Service) Config() *config.Config {
	return s.config
}

// retryAfterSeconds computes ceil(resetAt-now) in whole seconds, never below 1
// for a rejected request inside a live window.
func retryAfterSeconds(now, resetAt time.Time) int {
	remaining := resetAt.Sub(now)
	if remaining <= 0 {
		return 1
	}
	secs := int((remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
