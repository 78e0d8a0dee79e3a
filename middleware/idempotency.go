package middleware

import (
	"context"
	"net/http"
	"strings"
)

// DefaultIdempotencyHeader is the conventional request header.
const DefaultIdempotencyHeader = "Idempotency-Key"

// UnrepeatableValidator is satisfied by *validate.Validator.
type UnrepeatableValidator interface {
	UnRepeatableValidate(ctx context.Context, key, value string) (bool, error)
}

// Idempotency lets each idempotency key through once per route. A missing
// header is a 400, a replay is a 409 and an undecidable request is a 503.
func Idempotency(v UnrepeatableValidator, header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultIdempotencyHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(header))
			if id == "" {
				http.Error(w, "missing "+header+" header", http.StatusBadRequest)
				return
			}

			ok, err := v.UnRepeatableValidate(r.Context(), "idem:"+r.URL.Path+":"+id, r.Method)
			switch {
			case err != nil:
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			case !ok:
				http.Error(w, "duplicate request", http.StatusConflict)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
