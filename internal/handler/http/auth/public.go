package auth

import "strings"

// PublicEndpoints lists paths that bypass API key authentication entirely.
//
//   - /health, /ready, /live: orchestration health checks.
//   - /metrics: Prometheus scraping.
//   - /swagger/: API documentation.
//   - /ws/: websocket upgrade negotiates its own auth via the initial
//     query-string key, since browsers cannot set custom headers on the
//     upgrade request.
var PublicEndpoints = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/swagger/",
}

// IsPublicEndpoint reports whether path may be accessed without an API key.
//
// Endpoints ending in "/" match by prefix (e.g. "/swagger/" matches
// "/swagger/index.html"); all others require an exact match, a trailing
// slash, or a query string.
func IsPublicEndpoint(path string) bool {
	for _, endpoint := range PublicEndpoints {
		if strings.HasSuffix(endpoint, "/") {
			if strings.HasPrefix(path, endpoint) {
				return true
			}
			continue
		}

		if path == endpoint || path == endpoint+"/" {
			return true
		}
		if strings.HasPrefix(path, endpoint+"?") {
			return true
		}
	}
	return false
}
