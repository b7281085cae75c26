package auth

import (
	"context"

	"catchup-feed/pkg/ratelimit"
)

// KeyUserExtractor adapts the API-key identity attached by Middleware to
// middleware.UserExtractor, so per-key rate limiting (spec: 120 req/min per
// API key) can reuse the same UserRateLimiter the teacher built for
// per-JWT-user limiting. Requests admitted under the open-deployment
// fallback carry no key ID and fall through to IP-based limiting instead.
type KeyUserExtractor struct{}

// ExtractUser returns the authenticated API key's ID and a tier derived
// from its role.
func (KeyUserExtractor) ExtractUser(ctx context.Context) (userID string, tier ratelimit.UserTier, ok bool) {
	keyID, ok := KeyIDFromContext(ctx)
	if !ok || keyID == "" {
		return "", "", false
	}
	role, _ := RoleFromContext(ctx)
	return keyID, tierForRole(role), true
}

func tierForRole(role string) ratelimit.UserTier {
	switch role {
	case RoleAdmin:
		return ratelimit.TierAdmin
	case RoleSubscriber:
		return ratelimit.TierBasic
	case RoleReader:
		return ratelimit.TierViewer
	default:
		return ratelimit.TierBasic
	}
}
