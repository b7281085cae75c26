package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/requestid"
	"catchup-feed/internal/handler/http/respond"
	"catchup-feed/internal/repository"
)

type ctxKey string

const (
	ctxKeyID ctxKey = "api_key_id"
	ctxRole  ctxKey = "api_key_role"
)

// Authenticator authorizes requests against the configured API keys.
//
// Authorization logic:
//  1. Public endpoints (health checks, metrics, swagger) bypass auth
//     entirely.
//  2. If no API keys are enrolled at all, the deployment is treated as
//     open and every request is granted admin access. This keeps local
//     development and first-run setups unblocked until an operator
//     provisions the first key.
//  3. Otherwise the request must carry X-API-Key, matching the SHA-256
//     digest of some enabled key. The key's role then gates method and
//     path the way the JWT role claim used to.
type Authenticator struct {
	Keys repository.APIKeyRepository
}

// Middleware wraps next with API key authentication and role-based
// authorization.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublicEndpoint(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		role, keyID, err := a.authenticate(r)
		if err != nil {
			respond.SafeError(w, http.StatusUnauthorized, fmt.Errorf("unauthorized: %w", err))
			return
		}

		requestID := requestid.FromContext(r.Context())
		logger := slog.With(
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		authzStart := time.Now()
		hasPermission := checkRolePermission(role, r.Method, r.URL.Path)
		RecordAuthzCheckDuration(time.Since(authzStart).Seconds())

		if !hasPermission {
			RecordForbiddenAttempt(role, r.Method)
			logger.Warn("authorization denied",
				slog.String("role", role),
				slog.String("reason", "insufficient_permissions"))
			respond.SafeError(w, http.StatusForbidden, fmt.Errorf("forbidden: %s role cannot perform %s operations", role, r.Method))
			return
		}

		logger.Debug("authorization granted", slog.String("role", role))

		ctx := context.WithValue(r.Context(), ctxRole, role)
		if keyID != "" {
			ctx = context.WithValue(ctx, ctxKeyID, keyID)
			go a.Keys.TouchLastUsedAt(context.Background(), keyID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate resolves the request's role. It returns RoleAdmin with an
// empty key ID when the deployment has no keys enrolled yet.
func (a *Authenticator) authenticate(r *http.Request) (role string, keyID string, err error) {
	raw := r.Header.Get("X-API-Key")
	if raw == "" {
		// The browser WebSocket API cannot set custom headers on the
		// upgrade request, so /ws/ accepts the key as a query parameter.
		raw = r.URL.Query().Get("api_key")
	}
	if raw == "" {
		open, err := a.isOpenDeployment(r.Context())
		if err != nil {
			return "", "", err
		}
		if open {
			return RoleAdmin, "", nil
		}
		return "", "", errors.New("missing X-API-Key header")
	}

	hash := entity.HashAPIKey(raw)
	key, err := a.Keys.GetByHash(r.Context(), hash)
	if err != nil {
		return "", "", fmt.Errorf("looking up API key: %w", err)
	}
	if key == nil || !key.Enabled {
		return "", "", errors.New("invalid API key")
	}
	return string(key.Role), key.ID, nil
}

func (a *Authenticator) isOpenDeployment(ctx context.Context) (bool, error) {
	keys, err := a.Keys.List(ctx)
	if err != nil {
		return false, err
	}
	return len(keys) == 0, nil
}

// RoleFromContext returns the API key role attached by Middleware, if any.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ctxRole).(string)
	return role, ok
}

// KeyIDFromContext returns the authenticated API key's ID, if any. Requests
// admitted under the open-deployment fallback carry no key ID.
func KeyIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyID).(string)
	return id, ok
}
