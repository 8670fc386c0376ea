package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveCORS(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(method, "/api/v1/cart", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	CORS(cfg)(next).ServeHTTP(rec, req)
	return rec
}

func productionCORS(origins ...string) CORSConfig {
	return CORSConfig{AllowedOrigins: origins, Environment: "production"}
}

func TestCORS_AllowOrigin(t *testing.T) {
	tests := []struct {
		name   string
		cfg    CORSConfig
		origin string
		want   string
	}{
		{"development wildcard", DefaultCORSConfig(), "https://any.example", "*"},
		{"development without origin", DefaultCORSConfig(), "", "*"},
		{"explicit wildcard in production", productionCORS("*"), "https://any.example", "*"},
		{"exact match", productionCORS("https://stride.example"), "https://stride.example", "https://stride.example"},
		{"trailing slash in config", productionCORS("https://stride.example/"), "https://stride.example", "https://stride.example"},
		{"rejected", productionCORS("https://stride.example"), "https://evil.example", ""},
		{"no origin", productionCORS("https://stride.example"), "", ""},
		{"subdomain pattern", productionCORS("https://*.stride.example"), "https://shop.stride.example", "https://shop.stride.example"},
		{"pattern needs a subdomain", productionCORS("https://*.stride.example"), "https://.stride.example", ""},
		{"pattern checks scheme", productionCORS("https://*.stride.example"), "http://shop.stride.example", ""},
		{"pattern does not match apex", productionCORS("https://*.stride.example"), "https://stride.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveCORS(tt.cfg, http.MethodGet, tt.origin)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestCORS_VaryOnOriginInProduction(t *testing.T) {
	rec := serveCORS(productionCORS("https://stride.example"), http.MethodGet, "https://evil.example")
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	rec = serveCORS(DefaultCORSConfig(), http.MethodGet, "https://any.example")
	assert.Empty(t, rec.Header().Get("Vary"))
}

func TestCORS_Preflight(t *testing.T) {
	rec := serveCORS(DefaultCORSConfig(), http.MethodOptions, "https://stride.example")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Content-Type, X-Correlation-ID, X-Session-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID, X-Session-ID", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_DefaultsForEmptyConfig(t *testing.T) {
	rec := serveCORS(CORSConfig{}, http.MethodGet, "")

	assert.Equal(t, "GET, POST, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_CustomSettings(t *testing.T) {
	cfg := productionCORS("https://stride.example")
	cfg.AllowedMethods = []string{"GET"}
	cfg.MaxAge = 60
	cfg.AllowCredentials = true

	rec := serveCORS(cfg, http.MethodGet, "https://stride.example")

	assert.Equal(t, "GET", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "60", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
