package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// serveRequestLogged runs req through RequestLogger and returns the single JSON line
// the handler logged.
func serveRequestLogged(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	base := logger.NewWithWriter("storefront", "info", &buf)

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handled")
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRequestLogger_StoresLoggerInContext(t *testing.T) {
	var ctxLogger *slog.Logger
	handler := RequestLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxLogger = logger.FromContext(r.Context())
		}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	require.NotNil(t, ctxLogger)
	assert.NotSame(t, slog.Default(), ctxLogger)
}

func TestRequestLogger_IncludesCorrelationID(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-test-123")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil).WithContext(ctx)

	out := serveRequestLogged(t, req)

	assert.Equal(t, "corr-test-123", out["correlation_id"])
	assert.Equal(t, "storefront", out["service"])
}

func TestRequestLogger_SessionID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "sess-from-header", "sess-from-header"},
		{"trimmed", "  sess-1  ", "sess-1"},
		{"inner space", "sess 1", ""},
		{"control char", "sess\x01", ""},
		{"too long", strings.Repeat("s", maxSessionIDLen+1), ""},
		{"absent", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			if tt.header != "" {
				req.Header.Set(SessionHeader, tt.header)
			}
			assert.Equal(t, tt.want, SessionID(req))

			out := serveRequestLogged(t, req)
			if tt.want == "" {
				assert.NotContains(t, out, "session_id")
				return
			}
			assert.Equal(t, tt.want, out["session_id"])
		})
	}
}

func TestRequestLogger_IncludesTraceFields(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	out := serveRequestLogged(t, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil).WithContext(ctx))

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}
