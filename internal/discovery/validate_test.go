package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchup-feed/internal/adapter"
	"catchup-feed/internal/domain/entity"
)

type fakeDetector struct {
	feedURL string
	found   bool
}

func (f *fakeDetector) DetectFeed(ctx context.Context, pageURL string) (string, bool) {
	return f.feedURL, f.found
}

type fakeFetcher struct {
	items []adapter.RawArticle
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, source *entity.Source) ([]adapter.RawArticle, error) {
	return f.items, f.err
}

type fakeSourceRepository struct {
	created []*entity.Source
}

func (f *fakeSourceRepository) Get(ctx context.Context, id string) (*entity.Source, error) { return nil, nil }
func (f *fakeSourceRepository) List(ctx context.Context) ([]*entity.Source, error)          { return nil, nil }
func (f *fakeSourceRepository) ListEnabled(ctx context.Context) ([]*entity.Source, error)    { return nil, nil }
func (f *fakeSourceRepository) Create(ctx context.Context, source *entity.Source) error {
	f.created = append(f.created, source)
	return nil
}
func (f *fakeSourceRepository) Update(ctx context.Context, source *entity.Source) error { return nil }
func (f *fakeSourceRepository) Delete(ctx context.Context, id string) error             { return nil }
func (f *fakeSourceRepository) TouchLastFetchedAt(ctx context.Context, id string, t time.Time) error {
	return nil
}
func (f *fakeSourceRepository) UpdateHealth(ctx context.Context, id string, h entity.HealthStatus) error {
	return nil
}

func strongSamples() []adapter.RawArticle {
	var items []adapter.RawArticle
	for i := 0; i < 5; i++ {
		items = append(items, adapter.RawArticle{
			Title:       "Container shipping rates surge amid port congestion",
			URL:         "https://example.com/article-" + string(rune('a'+i)),
			BodyText:    "Ocean freight rates climbed this week as supply chain pressures mounted across major shipping lines and logistics networks worldwide, extending a trend analysts have tracked for months.",
			PublishedAt: time.Now(),
		})
	}
	return items
}

func TestValidator_Validate_NoFeedFoundFallsBackToUniversal(t *testing.T) {
	candidates := newFakeCandidateRepository()
	candidates.candidates = append(candidates.candidates, &entity.SourceCandidate{
		CandidateID: "c1", URL: "https://example.com", Status: entity.CandidateDiscovered,
	})
	sources := &fakeSourceRepository{}
	v := NewValidator(candidates, sources, &fakeDetector{found: false}, &fakeFetcher{}, &fakeFetcher{items: strongSamples()})

	processed, err := v.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	got := candidates.snapshot()[0]
	assert.NotEqual(t, entity.CandidateRejected, got.Status)
	assert.False(t, got.ValidationDetail.FeedFound)
	require.Len(t, sources.created, 1)
	assert.Equal(t, entity.SourceKindUniversal, sources.created[0].Kind)
}

func TestValidator_Validate_NoFeedAndUniversalFetchFailsRejectsCandidate(t *testing.T) {
	candidates := newFakeCandidateRepository()
	candidates.candidates = append(candidates.candidates, &entity.SourceCandidate{
		CandidateID: "c1", URL: "https://example.com", Status: entity.CandidateDiscovered,
	})
	sources := &fakeSourceRepository{}
	v := NewValidator(candidates, sources, &fakeDetector{found: false}, &fakeFetcher{}, &fakeFetcher{})

	processed, err := v.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	got := candidates.snapshot()[0]
	assert.Equal(t, entity.CandidateRejected, got.Status)
	assert.False(t, got.ValidationDetail.FeedFound)
}

func TestValidator_Validate_FetchFailsRejectsCandidate(t *testing.T) {
	candidates := newFakeCandidateRepository()
	candidates.candidates = append(candidates.candidates, &entity.SourceCandidate{
		CandidateID: "c1", URL: "https://example.com", Status: entity.CandidateDiscovered,
	})
	sources := &fakeSourceRepository{}
	v := NewValidator(candidates, sources, &fakeDetector{feedURL: "https://example.com/feed", found: true}, &fakeFetcher{items: nil}, &fakeFetcher{})

	_, err := v.Validate(context.Background())
	require.NoError(t, err)

	got := candidates.snapshot()[0]
	assert.Equal(t, entity.CandidateRejected, got.Status)
}

func TestValidator_Validate_StrongCandidateAutoApproves(t *testing.T) {
	candidates := newFakeCandidateRepository()
	candidates.candidates = append(candidates.candidates, &entity.SourceCandidate{
		CandidateID: "c1", URL: "https://example.com", Status: entity.CandidateDiscovered,
	})
	sources := &fakeSourceRepository{}
	v := NewValidator(candidates, sources,
		&fakeDetector{feedURL: "https://example.com/feed", found: true},
		&fakeFetcher{items: strongSamples()}, &fakeFetcher{})

	_, err := v.Validate(context.Background())
	require.NoError(t, err)

	got := candidates.snapshot()[0]
	assert.Equal(t, entity.CandidateApproved, got.Status)
	assert.True(t, got.AutoApproved)
	assert.GreaterOrEqual(t, got.CombinedScore, entity.AutoApprovalThreshold)
	require.Len(t, sources.created, 1)
	assert.Equal(t, entity.SourceKindFeed, sources.created[0].Kind)
	assert.Equal(t, "https://example.com/feed", sources.created[0].URL)
	assert.NotEqual(t, "c1", sources.created[0].SourceID)
	assert.Contains(t, sources.created[0].SourceID, "example-com")
}

func TestValidator_Validate_WeakCandidateValidatedNotApproved(t *testing.T) {
	candidates := newFakeCandidateRepository()
	candidates.candidates = append(candidates.candidates, &entity.SourceCandidate{
		CandidateID: "c1", URL: "https://example.com", Status: entity.CandidateDiscovered,
	})
	sources := &fakeSourceRepository{}
	weakItems := []adapter.RawArticle{{Title: "hi", URL: "https://example.com/x", BodyText: "short"}}
	v := NewValidator(candidates, sources,
		&fakeDetector{feedURL: "https://example.com/feed", found: true},
		&fakeFetcher{items: weakItems}, &fakeFetcher{})

	_, err := v.Validate(context.Background())
	require.NoError(t, err)

	got := candidates.snapshot()[0]
	assert.Equal(t, entity.CandidateValidated, got.Status)
	assert.False(t, got.AutoApproved)
	assert.Empty(t, sources.created)
}

func TestValidator_Validate_BatchSizeCapped(t *testing.T) {
	candidates := newFakeCandidateRepository()
	for i := 0; i < ValidateBatchSize+5; i++ {
		candidates.candidates = append(candidates.candidates, &entity.SourceCandidate{
			CandidateID: string(rune('a' + i)), URL: "https://example.com/" + string(rune('a'+i)), Status: entity.CandidateDiscovered,
		})
	}
	sources := &fakeSourceRepository{}
	v := NewValidator(candidates, sources, &fakeDetector{found: false}, &fakeFetcher{}, &fakeFetcher{})

	processed, err := v.Validate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ValidateBatchSize, processed)
}
