package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/pkg/httputil"
)

func limitedHandler(cfg RateLimitConfig) http.Handler {
	return RateLimit(cfg, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func postFrom(h http.Handler, remote string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.RemoteAddr = remote
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_DisabledPassesEverything(t *testing.T) {
	h := limitedHandler(RateLimitConfig{})

	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusNoContent, postFrom(h, "10.0.0.1:1234", nil).Code)
	}
}

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	h := limitedHandler(RateLimitConfig{RPS: 0.5, Burst: 2})
	before := testutil.ToFloat64(rateLimited)

	assert.Equal(t, http.StatusNoContent, postFrom(h, "10.0.0.1:1234", nil).Code)
	assert.Equal(t, http.StatusNoContent, postFrom(h, "10.0.0.1:1234", nil).Code)

	rec := postFrom(h, "10.0.0.1:1234", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RATE_LIMITED", resp.Error.Code)
	assert.InDelta(t, before+1, testutil.ToFloat64(rateLimited), 0.001)
}

func TestRateLimit_ClientsHaveSeparateBuckets(t *testing.T) {
	h := limitedHandler(RateLimitConfig{RPS: 0.5, Burst: 1})

	assert.Equal(t, http.StatusNoContent, postFrom(h, "10.0.0.1:1234", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, postFrom(h, "10.0.0.1:1234", nil).Code)

	assert.Equal(t, http.StatusNoContent, postFrom(h, "10.0.0.2:1234", nil).Code)
	assert.Equal(t, http.StatusNoContent,
		postFrom(h, "10.0.0.1:1234", map[string]string{SessionHeader: "sess-a"}).Code)
	assert.Equal(t, http.StatusTooManyRequests,
		postFrom(h, "10.0.0.9:1234", map[string]string{SessionHeader: "sess-a"}).Code)
}

func TestLimiterSet_SweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	set := newLimiterSet(RateLimitConfig{RPS: 1, Burst: 1, IdleTTL: time.Minute})
	set.now = func() time.Time { return now }

	set.allow("ip:a")
	set.allow("ip:b")
	assert.Equal(t, 2, set.size())

	now = now.Add(2 * time.Minute)
	set.allow("ip:c")
	assert.Equal(t, 1, set.size())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		header map[string]string
		want   string
	}{
		{"remote addr", "192.0.2.10:5555", nil, "192.0.2.10"},
		{"forwarded first valid", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "junk, 203.0.113.7, 10.0.0.2"}, "203.0.113.7"},
		{"mapped v4", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "::ffff:198.51.100.4"}, "198.51.100.4"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"no port", "pipe", nil, "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
