package ratelimit

import (
	"net/http"
	"strconv"
)

// RetryAfterSeconds is the Retry-After value sent when the token-bucket
// limiter rejects a request. The bucket refills continuously, so a short
// fixed hint is enough.
const RetryAfterSeconds = 1

// Middleware enforces the token-bucket limiter on every request. userID
// and paid extract the caller's identity and tier; requests with no user
// ID pass through and are handled by the auth layer instead.
func Middleware(limiter *RateLimiter, userID func(r *http.Request) string, paid func(r *http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := userID(r)
			if uid == "" {
				next.ServeHTTP(w, r)
				return
			}

			bucket := limiter.GetLimiter(uid, paid(r))
			if !bucket.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte("Too Many Requests"))
				return
			}

			remaining := int(bucket.Tokens())
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}
