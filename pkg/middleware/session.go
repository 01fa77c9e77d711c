package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chageun/carpick/pkg/httputil"
	"github.com/chageun/carpick/pkg/logger"
)

// SessionFromPath validates the chi URL parameter param as a session UUID,
// records it in the context for logging and re-derives the request logger.
// Requests with a malformed ID are rejected with 400.
func SessionFromPath(param string, base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := httputil.ParseUUID(w, chi.URLParam(r, param))
			if !ok {
				return
			}
			ctx := logger.WithSessionID(r.Context(), id.String())
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
