package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/source"
	srcUC "catchup-feed/internal/usecase/source"
)

type mockSourceRepo struct {
	getFn         func(ctx context.Context, id string) (*entity.Source, error)
	listFn        func(ctx context.Context) ([]*entity.Source, error)
	listEnabledFn func(ctx context.Context) ([]*entity.Source, error)
	createFn      func(ctx context.Context, s *entity.Source) error
	updateFn      func(ctx context.Context, s *entity.Source) error
	deleteFn      func(ctx context.Context, id string) error
	touchFn       func(ctx context.Context, id string, t time.Time) error
	healthFn      func(ctx context.Context, id string, h entity.HealthStatus) error
}

func (m *mockSourceRepo) Get(ctx context.Context, id string) (*entity.Source, error) {
	return m.getFn(ctx, id)
}
func (m *mockSourceRepo) List(ctx context.Context) ([]*entity.Source, error) { return m.listFn(ctx) }
func (m *mockSourceRepo) ListEnabled(ctx context.Context) ([]*entity.Source, error) {
	return m.listEnabledFn(ctx)
}
func (m *mockSourceRepo) Create(ctx context.Context, s *entity.Source) error { return m.createFn(ctx, s) }
func (m *mockSourceRepo) Update(ctx context.Context, s *entity.Source) error { return m.updateFn(ctx, s) }
func (m *mockSourceRepo) Delete(ctx context.Context, id string) error        { return m.deleteFn(ctx, id) }
func (m *mockSourceRepo) TouchLastFetchedAt(ctx context.Context, id string, t time.Time) error {
	return m.touchFn(ctx, id, t)
}
func (m *mockSourceRepo) UpdateHealth(ctx context.Context, id string, h entity.HealthStatus) error {
	return m.healthFn(ctx, id, h)
}

type mockFetchLogRepo struct {
	createFn       func(ctx context.Context, l *entity.FetchLog) error
	listBySourceFn func(ctx context.Context, sourceID string, since time.Time) ([]entity.FetchLog, error)
	listRecentFn   func(ctx context.Context, sourceID string, limit int) ([]entity.FetchLog, error)
}

func (m *mockFetchLogRepo) Create(ctx context.Context, l *entity.FetchLog) error {
	return m.createFn(ctx, l)
}
func (m *mockFetchLogRepo) ListBySource(ctx context.Context, sourceID string, since time.Time) ([]entity.FetchLog, error) {
	return m.listBySourceFn(ctx, sourceID, since)
}
func (m *mockFetchLogRepo) ListRecent(ctx context.Context, sourceID string, limit int) ([]entity.FetchLog, error) {
	return m.listRecentFn(ctx, sourceID, limit)
}

func TestListHandler_Success(t *testing.T) {
	repo := &mockSourceRepo{
		listFn: func(ctx context.Context) ([]*entity.Source, error) {
			return []*entity.Source{{SourceID: "src-1", Name: "Freight Waves"}}, nil
		},
	}
	h := source.ListHandler{Svc: srcUC.NewService(repo, &mockFetchLogRepo{})}

	req := httptest.NewRequest(http.MethodGet, "/sources", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetHandler_NotFound(t *testing.T) {
	repo := &mockSourceRepo{
		getFn: func(ctx context.Context, id string) (*entity.Source, error) { return nil, nil },
	}
	h := source.GetHandler{Svc: srcUC.NewService(repo, &mockFetchLogRepo{})}

	req := httptest.NewRequest(http.MethodGet, "/sources/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetHandler_Found(t *testing.T) {
	repo := &mockSourceRepo{
		getFn: func(ctx context.Context, id string) (*entity.Source, error) {
			return &entity.Source{SourceID: id, Name: "Freight Waves"}, nil
		},
	}
	h := source.GetHandler{Svc: srcUC.NewService(repo, &mockFetchLogRepo{})}

	req := httptest.NewRequest(http.MethodGet, "/sources/src-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestFetchLogsHandler_Success(t *testing.T) {
	logs := &mockFetchLogRepo{
		listRecentFn: func(ctx context.Context, sourceID string, limit int) ([]entity.FetchLog, error) {
			if sourceID != "src-1" {
				t.Fatalf("unexpected source ID: %s", sourceID)
			}
			return []entity.FetchLog{{SourceID: sourceID, Status: entity.FetchSuccess}}, nil
		},
	}
	h := source.FetchLogsHandler{Svc: srcUC.NewService(&mockSourceRepo{}, logs)}

	req := httptest.NewRequest(http.MethodGet, "/sources/src-1/fetch-logs", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}
