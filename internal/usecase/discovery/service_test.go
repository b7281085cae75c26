package discovery_test

import (
	"context"
	"testing"

	"catchup-feed/internal/discovery"
	"catchup-feed/internal/domain/entity"
	discUC "catchup-feed/internal/usecase/discovery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCandidateRepo struct {
	getFn          func(ctx context.Context, id string) (*entity.SourceCandidate, error)
	listByStatusFn func(ctx context.Context, status entity.CandidateStatus) ([]*entity.SourceCandidate, error)
	existsFn       func(ctx context.Context, url string) (bool, error)
	createFn       func(ctx context.Context, c *entity.SourceCandidate) error
	updateFn       func(ctx context.Context, c *entity.SourceCandidate) error
}

func (m *mockCandidateRepo) Get(ctx context.Context, id string) (*entity.SourceCandidate, error) {
	return m.getFn(ctx, id)
}
func (m *mockCandidateRepo) ListByStatus(ctx context.Context, status entity.CandidateStatus) ([]*entity.SourceCandidate, error) {
	return m.listByStatusFn(ctx, status)
}
func (m *mockCandidateRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	return m.existsFn(ctx, url)
}
func (m *mockCandidateRepo) Create(ctx context.Context, c *entity.SourceCandidate) error {
	return m.createFn(ctx, c)
}
func (m *mockCandidateRepo) Update(ctx context.Context, c *entity.SourceCandidate) error {
	return m.updateFn(ctx, c)
}

func TestService_ListCandidates_AllStatuses(t *testing.T) {
	repo := &mockCandidateRepo{
		listByStatusFn: func(ctx context.Context, status entity.CandidateStatus) ([]*entity.SourceCandidate, error) {
			if status == entity.CandidateDiscovered {
				return []*entity.SourceCandidate{{CandidateID: "c1"}}, nil
			}
			return nil, nil
		},
	}
	svc := discUC.NewService(discovery.NewLoop(nil, nil), nil, nil, repo)

	all, err := svc.ListCandidates(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestService_ListCandidates_FilteredStatus(t *testing.T) {
	repo := &mockCandidateRepo{
		listByStatusFn: func(ctx context.Context, status entity.CandidateStatus) ([]*entity.SourceCandidate, error) {
			assert.Equal(t, entity.CandidateApproved, status)
			return []*entity.SourceCandidate{{CandidateID: "c1"}}, nil
		},
	}
	svc := discUC.NewService(discovery.NewLoop(nil, nil), nil, nil, repo)

	out, err := svc.ListCandidates(context.Background(), entity.CandidateApproved)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestService_Status_NotRunning(t *testing.T) {
	svc := discUC.NewService(discovery.NewLoop(nil, nil), nil, nil, &mockCandidateRepo{})
	st := svc.Status()
	assert.False(t, st.Running)
}
