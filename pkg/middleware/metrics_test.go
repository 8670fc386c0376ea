package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// meteredRouter mounts handler at /api/v1/cart behind PrometheusMetrics so
// the chi route pattern is available.
func meteredRouter(service string, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/api/v1/cart", handler)
	return r
}

func histogramCount(t *testing.T, vec *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m, ok := vec.WithLabelValues(labels...).(prometheus.Metric)
	require.True(t, ok)
	var d dto.Metric
	require.NoError(t, m.Write(&d))
	return d.GetHistogram().GetSampleCount()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPrometheusMetrics_CountsByRouteAndStatus(t *testing.T) {
	r := meteredRouter("count-svc", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	for range 3 {
		assert.Equal(t, http.StatusCreated, get(r, "/api/v1/cart").Code)
	}

	assert.InDelta(t, 3, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("count-svc", "GET", "/api/v1/cart", "201")), 0)
	assert.Equal(t, uint64(3), histogramCount(t, httpRequestDuration, "count-svc", "GET", "/api/v1/cart", "201"))
}

func TestPrometheusMetrics_DefaultStatusAndSize(t *testing.T) {
	r := meteredRouter("size-svc", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"count":2}}`))
	})

	get(r, "/api/v1/cart")

	assert.InDelta(t, 1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("size-svc", "GET", "/api/v1/cart", "200")), 0)
	assert.Equal(t, uint64(1), histogramCount(t, httpResponseSize, "size-svc", "GET", "/api/v1/cart"))
}

func TestPrometheusMetrics_InFlight(t *testing.T) {
	var during float64
	r := meteredRouter("inflight-svc", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("inflight-svc"))
		w.WriteHeader(http.StatusOK)
	})

	get(r, "/api/v1/cart")

	assert.InDelta(t, 1, during, 0)
	assert.InDelta(t, 0, testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("inflight-svc")), 0)
}

func TestPrometheusMetrics_EventStreamSkipsLatency(t *testing.T) {
	r := meteredRouter("stream-svc", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: cart_count\ndata: {\"count\":0}\n\n"))
	})

	get(r, "/api/v1/cart")

	assert.InDelta(t, 1, testutil.ToFloat64(httpStreamsTotal.WithLabelValues("stream-svc", "/api/v1/cart")), 0)
	assert.Equal(t, uint64(0), histogramCount(t, httpRequestDuration, "stream-svc", "GET", "/api/v1/cart", "200"))
}

func TestPrometheusMetrics_UnknownRoute(t *testing.T) {
	r := meteredRouter("unknown-svc", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	assert.Equal(t, http.StatusNotFound, get(r, "/nope").Code)
	assert.InDelta(t, 1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("unknown-svc", "GET", "unknown", "404")), 0)
}

type flushRecorder struct {
	*httptest.ResponseRecorder
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

type hijackRecorder struct {
	*httptest.ResponseRecorder
	called bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.called = true
	return nil, nil, nil
}

// plainWriter implements only http.ResponseWriter.
type plainWriter struct{ header http.Header }

func (p *plainWriter) Header() http.Header         { return p.header }
func (p *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (p *plainWriter) WriteHeader(int)             {}

func TestMetricsResponseWriter_Delegation(t *testing.T) {
	fr := &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
	(&metricsResponseWriter{ResponseWriter: fr}).Flush()
	assert.True(t, fr.flushed)

	hr := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	_, _, err := (&metricsResponseWriter{ResponseWriter: hr}).Hijack()
	require.NoError(t, err)
	assert.True(t, hr.called)

	rw := &metricsResponseWriter{ResponseWriter: &plainWriter{header: http.Header{}}}
	assert.NotPanics(t, rw.Flush)
	_, _, err = rw.Hijack()
	assert.True(t, errors.Is(err, http.ErrNotSupported))
	assert.Same(t, rw.ResponseWriter, rw.Unwrap())
}

func TestMetricsResponseWriter_Interfaces(t *testing.T) {
	var w http.ResponseWriter = &metricsResponseWriter{ResponseWriter: httptest.NewRecorder()}
	_, isFlusher := w.(http.Flusher)
	_, isHijacker := w.(http.Hijacker)
	assert.True(t, isFlusher)
	assert.True(t, isHijacker)
}
