package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchup-feed/internal/adapter"
	"catchup-feed/internal/dedup"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/fingerprint"
	"catchup-feed/internal/repository"
)

type fakeAdapter struct {
	items []adapter.RawArticle
	err   error
}

func (f *fakeAdapter) Fetch(ctx context.Context, source *entity.Source) ([]adapter.RawArticle, error) {
	return f.items, f.err
}

type fakeArticleRepository struct {
	repository.ArticleRepository

	created []*entity.Article
}

func (f *fakeArticleRepository) GetByURL(ctx context.Context, url string) (*entity.Article, error) {
	for _, a := range f.created {
		if a.URL == url {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeArticleRepository) Get(ctx context.Context, id string) (*entity.Article, error) {
	for _, a := range f.created {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeArticleRepository) FindBySimHashWithin(ctx context.Context, target uint64, maxDistance int, since time.Time) ([]*entity.Article, error) {
	return nil, nil
}

func (f *fakeArticleRepository) Create(ctx context.Context, article *entity.Article) error {
	f.created = append(f.created, article)
	return nil
}

type fakeSourceRepository struct {
	repository.SourceRepository

	touched    map[string]time.Time
	health     map[string]entity.HealthStatus
}

func (f *fakeSourceRepository) TouchLastFetchedAt(ctx context.Context, id string, t time.Time) error {
	if f.touched == nil {
		f.touched = map[string]time.Time{}
	}
	f.touched[id] = t
	return nil
}

func (f *fakeSourceRepository) UpdateHealth(ctx context.Context, id string, h entity.HealthStatus) error {
	if f.health == nil {
		f.health = map[string]entity.HealthStatus{}
	}
	f.health[id] = h
	return nil
}

type fakeFetchLogRepository struct {
	repository.FetchLogRepository

	logs []*entity.FetchLog
}

func (f *fakeFetchLogRepository) Create(ctx context.Context, log *entity.FetchLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeFetchLogRepository) ListBySource(ctx context.Context, sourceID string, since time.Time) ([]entity.FetchLog, error) {
	var out []entity.FetchLog
	for _, l := range f.logs {
		if l.SourceID == sourceID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func testSource() *entity.Source {
	return &entity.Source{
		SourceID:    "src-1",
		Name:        "Test Source",
		Kind:        entity.SourceKindFeed,
		URL:         "https://example.com/feed.xml",
		IntervalMin: 30,
		Enabled:     true,
	}
}

func TestScheduler_RunSource_InsertsNewArticle(t *testing.T) {
	source := testSource()
	items := []adapter.RawArticle{
		{Title: "Rates climb on Asia-Europe lane", URL: "https://example.com/a", BodyText: "Container spot rates on the Asia to North Europe trade lane rose sharply this week.", PublishedAt: time.Now()},
	}

	articles := &fakeArticleRepository{}
	sources := &fakeSourceRepository{}
	fetchLogs := &fakeFetchLogRepository{}
	checker := dedup.NewChecker(articles, fingerprint.NewLSHIndex())

	sched := New(sources, fetchLogs, articles, map[entity.SourceKind]adapter.Adapter{
		entity.SourceKindFeed: &fakeAdapter{items: items},
	}, checker, nil, nil)

	sched.runSource(context.Background(), source)

	require.Len(t, articles.created, 1)
	assert.Equal(t, "Rates climb on Asia-Europe lane", articles.created[0].Title)
	require.Len(t, fetchLogs.logs, 1)
	assert.Equal(t, entity.FetchSuccess, fetchLogs.logs[0].Status)
	assert.Equal(t, 1, fetchLogs.logs[0].ArticlesFound)
	assert.Equal(t, 1, fetchLogs.logs[0].ArticlesNew)
	assert.Contains(t, sources.touched, "src-1")
}

func TestScheduler_RunSource_SkipsDuplicateURL(t *testing.T) {
	source := testSource()
	existing := &entity.Article{ID: "existing-1", URL: "https://example.com/a"}
	articles := &fakeArticleRepository{created: []*entity.Article{existing}}
	sources := &fakeSourceRepository{}
	fetchLogs := &fakeFetchLogRepository{}
	checker := dedup.NewChecker(articles, fingerprint.NewLSHIndex())

	items := []adapter.RawArticle{
		{Title: "Rates climb", URL: "https://example.com/a", BodyText: "Some body text here.", PublishedAt: time.Now()},
	}
	sched := New(sources, fetchLogs, articles, map[entity.SourceKind]adapter.Adapter{
		entity.SourceKindFeed: &fakeAdapter{items: items},
	}, checker, nil, nil)

	sched.runSource(context.Background(), source)

	require.Len(t, articles.created, 1) // only the pre-seeded one
	require.Len(t, fetchLogs.logs, 1)
	assert.Equal(t, 1, fetchLogs.logs[0].ArticlesDedup)
	assert.Equal(t, 0, fetchLogs.logs[0].ArticlesNew)
}

func TestScheduler_RunSource_NonReentrant(t *testing.T) {
	source := testSource()
	articles := &fakeArticleRepository{}
	sources := &fakeSourceRepository{}
	fetchLogs := &fakeFetchLogRepository{}
	checker := dedup.NewChecker(articles, fingerprint.NewLSHIndex())

	sched := New(sources, fetchLogs, articles, map[entity.SourceKind]adapter.Adapter{
		entity.SourceKindFeed: &fakeAdapter{items: nil},
	}, checker, nil, nil)

	lockVal, _ := sched.locks.LoadOrStore(source.SourceID, new(int32))
	*lockVal.(*int32) = 1

	sched.runSource(context.Background(), source)

	assert.Empty(t, fetchLogs.logs, "a run already in flight must not write a second log")
}

func TestJitterSchedule_StaysWithinBounds(t *testing.T) {
	sched := newJitterSchedule(60, 0.10)
	base := time.Now()
	for i := 0; i < 50; i++ {
		next := sched.Next(base)
		delta := next.Sub(base)
		assert.GreaterOrEqual(t, delta, 54*time.Minute)
		assert.LessOrEqual(t, delta, 66*time.Minute)
	}
}
