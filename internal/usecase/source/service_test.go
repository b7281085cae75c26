package source_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/usecase/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSourceRepo struct {
	getFn               func(ctx context.Context, id string) (*entity.Source, error)
	listFn              func(ctx context.Context) ([]*entity.Source, error)
	listEnabledFn       func(ctx context.Context) ([]*entity.Source, error)
	createFn            func(ctx context.Context, s *entity.Source) error
	updateFn            func(ctx context.Context, s *entity.Source) error
	deleteFn            func(ctx context.Context, id string) error
	touchLastFetchedFn  func(ctx context.Context, id string, t time.Time) error
	updateHealthFn      func(ctx context.Context, id string, h entity.HealthStatus) error
}

func (m *mockSourceRepo) Get(ctx context.Context, id string) (*entity.Source, error) {
	return m.getFn(ctx, id)
}
func (m *mockSourceRepo) List(ctx context.Context) ([]*entity.Source, error) {
	return m.listFn(ctx)
}
func (m *mockSourceRepo) ListEnabled(ctx context.Context) ([]*entity.Source, error) {
	return m.listEnabledFn(ctx)
}
func (m *mockSourceRepo) Create(ctx context.Context, s *entity.Source) error {
	return m.createFn(ctx, s)
}
func (m *mockSourceRepo) Update(ctx context.Context, s *entity.Source) error {
	return m.updateFn(ctx, s)
}
func (m *mockSourceRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockSourceRepo) TouchLastFetchedAt(ctx context.Context, id string, t time.Time) error {
	return m.touchLastFetchedFn(ctx, id, t)
}
func (m *mockSourceRepo) UpdateHealth(ctx context.Context, id string, h entity.HealthStatus) error {
	return m.updateHealthFn(ctx, id, h)
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

func TestService_Create_RequiresMatchingAdapterConfig(t *testing.T) {
	repo := &mockSourceRepo{}
	svc := source.NewService(repo, &mockFetchLogRepo{})

	_, err := svc.Create(context.Background(), source.CreateInput{
		SourceID:    "src-1",
		Name:        "Freight Waves",
		Kind:        entity.SourceKindAPI,
		URL:         "https://api.example.com/articles",
		IntervalMin: 15,
	})

	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "api_config", verr.Field)
}

func TestService_Create_Success(t *testing.T) {
	var created *entity.Source
	repo := &mockSourceRepo{
		createFn: func(ctx context.Context, s *entity.Source) error {
			created = s
			return nil
		},
	}
	svc := source.NewService(repo, &mockFetchLogRepo{})

	got, err := svc.Create(context.Background(), source.CreateInput{
		SourceID:    "src-1",
		Name:        "Freight Waves",
		Kind:        entity.SourceKindFeed,
		URL:         "https://example.com/rss",
		IntervalMin: 15,
	})

	require.NoError(t, err)
	assert.True(t, got.Enabled)
	assert.Same(t, created, got)
}

func TestService_Update_NotFound(t *testing.T) {
	repo := &mockSourceRepo{
		getFn: func(ctx context.Context, id string) (*entity.Source, error) { return nil, nil },
	}
	svc := source.NewService(repo, &mockFetchLogRepo{})

	err := svc.Update(context.Background(), source.UpdateInput{SourceID: "missing", Name: "x"})

	assert.ErrorIs(t, err, source.ErrSourceNotFound)
}

func TestService_Update_PartialFields(t *testing.T) {
	existing := &entity.Source{SourceID: "src-1", Name: "Old Name", Priority: 5, Enabled: true}
	var updated *entity.Source
	repo := &mockSourceRepo{
		getFn:    func(ctx context.Context, id string) (*entity.Source, error) { return existing, nil },
		updateFn: func(ctx context.Context, s *entity.Source) error { updated = s; return nil },
	}
	svc := source.NewService(repo, &mockFetchLogRepo{})

	disable := false
	err := svc.Update(context.Background(), source.UpdateInput{SourceID: "src-1", Name: "New Name", Enabled: &disable})

	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, 5, updated.Priority)
	assert.False(t, updated.Enabled)
}

func TestService_Delete_RequiresID(t *testing.T) {
	svc := source.NewService(&mockSourceRepo{}, &mockFetchLogRepo{})

	err := svc.Delete(context.Background(), "")

	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestService_RecentFetchLogs(t *testing.T) {
	logs := &mockFetchLogRepo{
		listRecentFn: func(ctx context.Context, sourceID string, limit int) ([]entity.FetchLog, error) {
			assert.Equal(t, "src-1", sourceID)
			assert.Equal(t, 10, limit)
			return []entity.FetchLog{{SourceID: sourceID}}, nil
		},
	}
	svc := source.NewService(&mockSourceRepo{}, logs)

	got, err := svc.RecentFetchLogs(context.Background(), "src-1", 10)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_RecentFetchLogs_Error(t *testing.T) {
	logs := &mockFetchLogRepo{
		listRecentFn: func(ctx context.Context, sourceID string, limit int) ([]entity.FetchLog, error) {
			return nil, errors.New("db down")
		},
	}
	svc := source.NewService(&mockSourceRepo{}, logs)

	_, err := svc.RecentFetchLogs(context.Background(), "src-1", 10)

	assert.Error(t, err)
}
