// Package ports defines shared interfaces for the ratelimit module.
// Interfaces live here when consumed by multiple packages to avoid duplication.
package ports

import (
	"context"
	"log/slog"
	"time"

	"streamgate/pkg/requestcontext"
)

// CounterStore manages fixed-window request counters.
type CounterStore interface {
	// Increment records one request against key and returns the request count
	// within the current window together with the window's reset time. When
	// the stored window has expired the counter restarts at 1.
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error

	// Count returns the current request count in the window without
	// consuming quota.
	Count(ctx context.Context, key string) (int, error)
}

// LogAudit is a shared helper for logging audit events across ratelimit
// packages. Events carry the request ID and the caller's user agent for
// traceability.
func LogAudit(ctx context.Context, logger *slog.Logger, event string, attrs ...any) {
	if logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	if ua := requestcontext.UserAgent(ctx); ua != "" {
		attrs = append(attrs, "user_agent", ua)
	}
	args := append(attrs, "event", event, "log_type", "audit")
	logger.InfoContext(ctx, event, args...)
}
