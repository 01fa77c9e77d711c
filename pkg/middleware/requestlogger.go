package middleware

import (
	"log/slog"
	"net/http"

	"github.com/chageun/carpick/pkg/logger"
)

// SessionHeader lets clients tag requests outside the /sessions routes with
// their questionnaire session.
const SessionHeader = "X-Session-ID"

// RequestLogger stores a logger enriched with correlation, session and trace
// IDs in the request context. Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if logger.SessionIDFromContext(ctx) == "" {
				if id := r.Header.Get(SessionHeader); id != "" {
					ctx = logger.WithSessionID(ctx, id)
				}
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
