package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit caps a route group at perMinute requests per process. Used on the
// AI routes, where every request fans out to a paid upstream.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
