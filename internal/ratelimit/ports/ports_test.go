package ports

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"streamgate/pkg/requestcontext"
)

func TestLogAuditCarriesRequestMetadata(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := requestcontext.WithRequestID(context.Background(), "req-123")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", "curl/8.5.0")

	LogAudit(ctx, logger, "limit_exceeded", "client_key", "ip_10.0.0.1")

	out := buf.String()
	assert.Contains(t, out, "event=limit_exceeded")
	assert.Contains(t, out, "log_type=audit")
	assert.Contains(t, out, "request_id=req-123")
	assert.Contains(t, out, "user_agent=curl/8.5.0")
	assert.Contains(t, out, "client_key=ip_10.0.0.1")
}

func TestLogAuditOmitsMissingMetadata(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogAudit(context.Background(), logger, "counter_reset")

	out := buf.String()
	assert.Contains(t, out, "event=counter_reset")
	assert.NotContains(t, out, "request_id=")
	assert.NotContains(t, out, "user_agent=")
}

func TestLogAuditNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogAudit(context.Background(), nil, "counter_reset")
	})
}
