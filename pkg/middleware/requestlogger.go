package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/EcommerceGo/pkg/logger"
)

// SessionHeader carries the storefront browser session identifier.
const SessionHeader = "X-Session-ID"

const maxSessionIDLen = 128

// SessionID returns the session identifier sent by the client, or "" when the
// header is absent or malformed. Only printable ASCII without spaces is
// accepted so the value is safe to put in logs and span attributes.
func SessionID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if id == "" || len(id) > maxSessionIDLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return ""
		}
	}
	return id
}

// RequestLogger returns middleware that builds a request-scoped logger enriched
// with correlation_id, session_id, trace_id, and span_id, then stores it in
// context via logger.NewContext. Downstream handlers retrieve it with
// logger.FromContext(ctx).
//
// Mount it after RequestLogging and Tracing so the correlation id and span
// context are already set.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := SessionID(r); id != "" {
				ctx = logger.WithSessionID(ctx, id)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
