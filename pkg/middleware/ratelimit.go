package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/chageun/carpick/pkg/httputil"
)

// RateLimitByIP allows requestsPerMinute per client IP and answers the excess
// with 429 in the standard envelope. A non-positive limit disables limiting.
func RateLimitByIP(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "RATE_LIMITED", Message: "too many requests"},
			})
		}),
	)
}
