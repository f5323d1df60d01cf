package mw

import (
	"net"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/clipflow/internal/logger"
)

// EnforceHost rejects requests whose Host header matches none of allowed.
// Ports are ignored on both sides and "*.example.com" matches any
// subdomain. An empty list disables the check.
func EnforceHost(allowed []string, log logger.Logger) func(http.Handler) http.Handler {
	patterns := make([]string, 0, len(allowed))
	for _, p := range allowed {
		if p = normalizeHost(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		log.Debug("EnforceHost: empty allowedHosts, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := normalizeHost(r.Host)
			for _, pattern := range patterns {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}
			log.Debug("host rejected", logger.String("host", r.Host))
			forbidden(w)
		})
	}
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return strings.Trim(h, "[]")
}

func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return strings.HasSuffix(host, suffix) && len(host) > len(suffix)
	}
	return false
}
