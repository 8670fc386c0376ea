package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info+2", slog.LevelInfo + 2},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithOptions_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions(Options{Service: "storefront-service", Environment: "test", Level: "info", Writer: &buf})

	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Info("cart cleared")
	out := decodeLine(t, &buf)
	assert.Equal(t, "storefront-service", out["service"])
	assert.Equal(t, "test", out["environment"])
	assert.Equal(t, "cart cleared", out["msg"])
	assert.NotContains(t, out, "source")
}

func TestNewWithOptions_TextAndDebugSource(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions(Options{Service: "storefront-service", Level: "debug", Format: FormatText, Writer: &buf})

	l.Debug("catalog seeded")

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "time="))
	assert.Contains(t, line, "service=storefront-service")
	assert.Contains(t, line, "source=")
	assert.NotContains(t, line, "environment=")
}

func TestWithContext_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("storefront-service", "info", &buf)

	ctx := WithCorrelationID(spanContext(t), "req-123")
	ctx = WithSessionID(ctx, "sess-1")
	WithContext(ctx, l).Info("with fields")

	out := decodeLine(t, &buf)
	assert.Equal(t, "req-123", out["correlation_id"])
	assert.Equal(t, "sess-1", out["session_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

func TestWithContext_NoFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("storefront-service", "info", &buf)

	WithContext(context.Background(), l).Info("bare")

	out := decodeLine(t, &buf)
	for _, key := range []string{"correlation_id", "session_id", "trace_id", "span_id"} {
		assert.NotContains(t, out, key)
	}
}

func TestContextValues_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, SessionIDFromContext(ctx))
}

func TestFromContext(t *testing.T) {
	l := NewWithWriter("storefront-service", "info", &bytes.Buffer{})

	assert.Same(t, l, FromContext(NewContext(context.Background(), l)))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
