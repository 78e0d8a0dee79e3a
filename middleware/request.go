package middleware

import (
	"net/http"
	"strings"

	goCoord "github.com/MrEthical07/goCoord"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id in and out.
const RequestIDHeader = "X-Request-ID"

// RequestContext attaches the client IP and a request id to the request
// context so Coordinator audit events can be correlated. An incoming
// X-Request-ID is kept; otherwise a random one is minted and echoed back.
func RequestContext(trustForwarded bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := goCoord.WithClientIP(r.Context(), clientIP(r, trustForwarded))
			ctx = goCoord.WithRequestID(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
