package middleware

import (
	"context"
	"net/http"
)

const rateLimitExceededMessage = "you have reached the maximum number of requests or actions allowed within a certain time frame"

// Allower is satisfied by *ratelimit.Limiter.
type Allower interface {
	IsAllowed(ctx context.Context, limitKey string) bool
}

// RateLimit admits a request only when the bucket for keyFn(r) has a token.
// IsAllowed denies on cache failure, so an unreachable cache rejects traffic.
func RateLimit(l Allower, keyFn KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := keyFn(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			if l == nil || !l.IsAllowed(r.Context(), key) {
				writeTooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(rateLimitExceededMessage))
}
