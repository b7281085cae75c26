package auth

import "strings"

// Role constants mirror entity.APIKeyRole. Kept as plain strings here so the
// permission table below can be expressed without importing the domain
// package into the transport layer.
const (
	RoleAdmin      = "admin"
	RoleReader     = "reader"
	RoleSubscriber = "subscriber"
)

// Permission defines the allowed operations for a role.
type Permission struct {
	// AllowedMethods specifies which HTTP methods this role can use.
	AllowedMethods []string

	// AllowedPaths specifies which URL path prefixes this role can access.
	// "/*" matches all paths; "/articles/*" matches /articles and anything
	// nested under it.
	AllowedPaths []string
}

// RolePermissions maps each API key role to its allowed operations.
//
//   - admin: full access, including API key and source administration.
//   - reader: read-only access to articles, sources, and discovery status.
//   - subscriber: read-only access plus full control of subscriptions, so
//     integrators can manage their own webhook/push filters without an
//     admin key.
var RolePermissions = map[string]Permission{
	RoleAdmin: {
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedPaths:   []string{"/*"},
	},
	RoleReader: {
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedPaths: []string{
			"/articles",
			"/articles/*",
			"/sources",
			"/sources/*",
			"/discovery/status",
			"/discovery/candidates",
			"/swagger/*",
		},
	},
	RoleSubscriber: {
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedPaths: []string{
			"/articles",
			"/articles/*",
			"/sources",
			"/sources/*",
			"/subscriptions",
			"/subscriptions/*",
			"/ws/*",
			"/swagger/*",
		},
	},
}

// checkRolePermission reports whether a role may perform method on path.
func checkRolePermission(role, method, path string) bool {
	if role == "" {
		return false
	}

	perm, exists := RolePermissions[role]
	if !exists {
		return false
	}

	methodAllowed := false
	for _, allowed := range perm.AllowedMethods {
		if allowed == method {
			methodAllowed = true
			break
		}
	}
	if !methodAllowed {
		return false
	}

	return matchesPathPattern(path, perm.AllowedPaths)
}

// matchesPathPattern checks if a path matches any of the allowed patterns.
// Patterns ending with "/*" match the prefix itself plus anything nested
// under it; all other patterns require an exact match.
func matchesPathPattern(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "/*" {
			return true
		}

		if strings.HasSuffix(pattern, "/*") {
			prefix := strings.TrimSuffix(pattern, "/*")
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}

		if path == pattern {
			return true
		}
	}
	return false
}
