package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheControl(t *testing.T) {
	tests := []struct {
		name   string
		maxAge int
		method string
		want   string
	}{
		{"public max-age on GET", 60, http.MethodGet, "public, max-age=60"},
		{"no-store when disabled", 0, http.MethodGet, "no-store"},
		{"negative is no-store", -5, http.MethodHead, "no-store"},
		{"skips writes", 60, http.MethodPost, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			rec := httptest.NewRecorder()
			CacheControl(tt.maxAge)(next).ServeHTTP(rec, httptest.NewRequest(tt.method, "/", nil))

			assert.Equal(t, tt.want, rec.Header().Get("Cache-Control"))
		})
	}
}
