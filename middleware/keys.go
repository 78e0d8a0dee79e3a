package middleware

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc derives the coordination key for a request. It returns false when
// no key can be derived.
type KeyFunc func(r *http.Request) (string, bool)

// ClientIP keys requests by client address. Forwarding headers are honoured
// only when trustForwarded is set, i.e. behind a proxy that overwrites them.
func ClientIP(trustForwarded bool) KeyFunc {
	return func(r *http.Request) (string, bool) {
		ip := clientIP(r, trustForwarded)
		return ip, ip != ""
	}
}

// HeaderOrIP keys requests by a header such as an API key and falls back to
// the client address when the header is absent.
func HeaderOrIP(header string, trustForwarded bool) KeyFunc {
	return func(r *http.Request) (string, bool) {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return "hdr:" + v, true
		}
		ip := clientIP(r, trustForwarded)
		return "ip:" + ip, ip != ""
	}
}

// Prefixed namespaces keys from fn, e.g. per route.
func Prefixed(prefix string, fn KeyFunc) KeyFunc {
	return func(r *http.Request) (string, bool) {
		key, ok := fn(r)
		if !ok {
			return "", false
		}
		return prefix + key, true
	}
}

func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
			return xrip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
