package utils

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

// RateLimit sheds requests above rps (with the given burst) with a 429.
// A non-positive rps returns next unchanged.
func RateLimit(rps float64, burst int, log *slog.Logger) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				log.Warn("rate limit exceeded", slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr), slog.String("rid", RID(r.Context())))
				w.Header().Set("Retry-After", "1")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, map[string]any{
					"status_code": http.StatusTooManyRequests,
					"error_code":  "RATE_LIMITED",
					"message":     "too many requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
