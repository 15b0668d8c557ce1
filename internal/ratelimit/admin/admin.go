// Package admin exposes operator tooling for the admission controller:
// counter inspection, per-client window resets and a read-only view of the
// policy table.
package admin

import (
	"context"
	"errors"
	"log/slog"

	"streamgate/internal/ratelimit/config"
	"streamgate/internal/ratelimit/models"
	"streamgate/internal/ratelimit/ports"
	pkgerrors "streamgate/pkg/errors"
)

type Service struct {
	counters ports.CounterStore
	config   *config.Config
	logger   *slog.Logger
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

func New(counters ports.CounterStore, opts ...Option) (*Service, error) {
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

// CurrentCount returns the live in-window count for a (class, client) pair.
func (s *Service) CurrentCount(ctx context.Context, class models.RouteClass, clientKey string) (int, error) {
	if !class.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidInput, "invalid route class")
	}
	if clientKey == "" {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidInput, "client key cannot be empty")
	}

	count, err := s.counters.Count(ctx, models.CounterKey(class, clientKey))
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to read counter")
	}
	return count, nil
}

// ResetClient clears a client's window for one route class, immediately
// restoring its full quota.
func (s *Service) ResetClient(ctx context.Context, class models.RouteClass, clientKey string) error {
	if !class.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInvalidInput, "invalid route class")
	}
	if clientKey == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidInput, "client key cannot be empty")
	}

	if err := s.counters.Reset(ctx, models.CounterKey(class, clientKey)); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to reset counter")
	}

	ports.LogAudit(ctx, s.logger, "rate_limit_counter_reset",
		"client_key", clientKey,
		"route_class", class,
	)
	return nil
}

// PolicySnapshot is the read-only admin view of one route class policy.
type PolicySnapshot struct {
	RouteClass    models.RouteClass `json:"route_class"`
	WindowSeconds int               `json:"window_seconds"`
	MaxRequests   int               `json:"max_requests"`
	Message       string            `json:"message"`
}

// ConfigSnapshot returns the immutable policy table for inspection.
func (s *Service) ConfigSnapshot() []PolicySnapshot {
	classes := []models.RouteClass{
		models.ClassAuth,
		models.ClassMedia,
		models.ClassSearch,
		models.ClassUser,
		models.ClassAdmin,
		models.ClassDefault,
	}

	snapshots := make([]PolicySnapshot, 0, len(classes))
	for _, class := range classes {
		policy, ok := s.config.GetPolicy(class)
		if !ok {
			continue
		}
		snapshots = append(snapshots, PolicySnapshot{
			RouteClass:    class,
			WindowSeconds: int(policy.Window.Seconds()),
			MaxRequests:   policy.MaxRequests,
			Message:       policy.Message,
		})
	}
	return snapshots
}
