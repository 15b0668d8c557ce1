// Package middleware adapts admission decisions to the HTTP layer.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"streamgate/internal/ratelimit/models"
	"streamgate/pkg/platform/httputil"
	"streamgate/pkg/requestcontext"
)

// AdmissionService is the decision surface the middleware needs.
type AdmissionService interface {
	Classify(path string) models.RouteClass
	IsExempt(path string) bool
	Identify(ctx context.Context) (clientKey string, role models.Role)
	Check(ctx context.Context, clientKey string, class models.RouteClass, role models.Role) (*models.Decision, error)
	Message(class models.RouteClass) string
}

type Middleware struct {
	service  AdmissionService
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables admission entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(service AdmissionService, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		service: service,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Admit gates every request through the admission controller. Quota headers
// are attached on both outcomes so clients can self-throttle proactively.
func (m *Middleware) Admit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled || m.service.IsExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		class := m.service.Classify(r.URL.Path)
		clientKey, role := m.service.Identify(ctx)

		decision, err := m.service.Check(ctx, clientKey, class, role)
		if err != nil {
			// Fail open: an admission infrastructure failure must not take
			// the API down with it.
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"error", err,
				"route_class", class,
				"request_id", requestcontext.RequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, decision)

		if !decision.Allowed {
			m.writeRateLimitExceeded(w, class, decision)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, decision *models.Decision) {
	if decision == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
}

func (m *Middleware) writeRateLimitExceeded(w http.ResponseWriter, class models.RouteClass, decision *models.Decision) {
	w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		StatusCode: http.StatusTooManyRequests,
		Message:    m.service.Message(class),
		Error:      models.ReasonRateLimitExceeded,
		RetryAfter: decision.RetryAfter,
	})
}
