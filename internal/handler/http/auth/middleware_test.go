package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/auth"
)

type mockKeyRepo struct {
	getByHashFn func(ctx context.Context, hash string) (*entity.APIKey, error)
	listFn      func(ctx context.Context) ([]*entity.APIKey, error)
	touched     []string
}

func (m *mockKeyRepo) GetByHash(ctx context.Context, hash string) (*entity.APIKey, error) {
	return m.getByHashFn(ctx, hash)
}
func (m *mockKeyRepo) List(ctx context.Context) ([]*entity.APIKey, error) { return m.listFn(ctx) }
func (m *mockKeyRepo) Create(ctx context.Context, k *entity.APIKey) error { return nil }
func (m *mockKeyRepo) Update(ctx context.Context, k *entity.APIKey) error { return nil }
func (m *mockKeyRepo) TouchLastUsedAt(ctx context.Context, id string) error {
	m.touched = append(m.touched, id)
	return nil
}

func newMux(auther *auth.Authenticator) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /articles", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	mux.Handle("POST /sources", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	mux.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return auther.Middleware(mux)
}

func TestAuthenticator_PublicEndpointBypassesAuth(t *testing.T) {
	a := &auth.Authenticator{Keys: &mockKeyRepo{}}
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newMux(a).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthenticator_OpenDeploymentAllowsAdminAccess(t *testing.T) {
	repo := &mockKeyRepo{listFn: func(ctx context.Context) ([]*entity.APIKey, error) { return nil, nil }}
	a := &auth.Authenticator{Keys: repo}

	req := httptest.NewRequest(http.MethodPost, "/sources", nil)
	rec := httptest.NewRecorder()
	newMux(a).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestAuthenticator_MissingKeyRejected(t *testing.T) {
	repo := &mockKeyRepo{
		listFn: func(ctx context.Context) ([]*entity.APIKey, error) {
			return []*entity.APIKey{{ID: "k1", Enabled: true}}, nil
		},
	}
	a := &auth.Authenticator{Keys: repo}

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	rec := httptest.NewRecorder()
	newMux(a).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticator_ValidReaderKeyCannotWrite(t *testing.T) {
	hash := entity.HashAPIKey("reader-secret")
	repo := &mockKeyRepo{
		getByHashFn: func(ctx context.Context, h string) (*entity.APIKey, error) {
			if h != hash {
				return nil, nil
			}
			return &entity.APIKey{ID: "k1", Role: entity.RoleReader, Enabled: true}, nil
		},
	}
	a := &auth.Authenticator{Keys: repo}

	req := httptest.NewRequest(http.MethodPost, "/sources", nil)
	req.Header.Set("X-API-Key", "reader-secret")
	rec := httptest.NewRecorder()
	newMux(a).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAuthenticator_ValidAdminKeyTouchesLastUsed(t *testing.T) {
	hash := entity.HashAPIKey("admin-secret")
	repo := &mockKeyRepo{
		getByHashFn: func(ctx context.Context, h string) (*entity.APIKey, error) {
			if h != hash {
				return nil, nil
			}
			return &entity.APIKey{ID: "k1", Role: entity.RoleAdmin, Enabled: true}, nil
		},
	}
	a := &auth.Authenticator{Keys: repo}

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("X-API-Key", "admin-secret")
	rec := httptest.NewRecorder()
	newMux(a).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthenticator_DisabledKeyRejected(t *testing.T) {
	hash := entity.HashAPIKey("disabled-secret")
	repo := &mockKeyRepo{
		getByHashFn: func(ctx context.Context, h string) (*entity.APIKey, error) {
			if h != hash {
				return nil, nil
			}
			return &entity.APIKey{ID: "k1", Role: entity.RoleAdmin, Enabled: false}, nil
		},
	}
	a := &auth.Authenticator{Keys: repo}

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("X-API-Key", "disabled-secret")
	rec := httptest.NewRecorder()
	newMux(a).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
