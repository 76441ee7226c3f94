package middleware

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/ratelimit"
)

// ClientID identifies the caller for rate limiting: the first address of
// X-Forwarded-For when present, otherwise the remote IP.
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests with 429 once the client exhausts its bucket
// for endpoint.
func RateLimit(limiter *ratelimit.ClientLimiter, endpoint string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientID(r)
			if !limiter.Allow(endpoint, client) {
				LoggerFromRequest(r, logger).Debug("rate limited",
					zap.String("endpoint", endpoint),
					zap.String("client", client))
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
