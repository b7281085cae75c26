package enrichment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

type fakeProvider struct {
	extractFn func(ctx context.Context, title, body string) (*ExtractionResult, error)
	embedFn   func(ctx context.Context, text string) ([]float32, error)
}

func (f *fakeProvider) Extract(ctx context.Context, title, body string) (*ExtractionResult, error) {
	return f.extractFn(ctx, title, body)
}

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.embedFn(ctx, text)
}

type fakeArticleRepository struct {
	repository.ArticleRepository

	articles map[string]*entity.Article
}

func newFakeArticleRepository(articles ...*entity.Article) *fakeArticleRepository {
	m := make(map[string]*entity.Article, len(articles))
	for _, a := range articles {
		m[a.ID] = a
	}
	return &fakeArticleRepository{articles: m}
}

func (f *fakeArticleRepository) Get(ctx context.Context, id string) (*entity.Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (f *fakeArticleRepository) Update(ctx context.Context, article *entity.Article) error {
	f.articles[article.ID] = article
	return nil
}

func (f *fakeArticleRepository) TryClaimProcessing(ctx context.Context, id string) (bool, error) {
	a, ok := f.articles[id]
	if !ok {
		return false, nil
	}
	if a.ProcessingStatus != entity.ProcessingPending {
		return false, nil
	}
	a.ProcessingStatus = entity.ProcessingInProgress
	return true, nil
}

func (f *fakeArticleRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Article, error) {
	var out []*entity.Article
	for _, a := range f.articles {
		if a.ProcessingStatus == entity.ProcessingPending || a.ProcessingStatus == entity.ProcessingInProgress {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakePublisher struct {
	published []*entity.Article
}

func (p *fakePublisher) PublishCompleted(article *entity.Article) {
	p.published = append(p.published, article)
}

func testArticle(id string) *entity.Article {
	return entity.NewArticle(id, "src-1", "https://example.com/"+id, "Title "+id, "Body text", time.Now())
}

func goodEmbedding() []float32 {
	v := make([]float32, entity.EmbeddingDimension)
	for i := range v {
		v[i] = 0.01
	}
	return v
}

func runAndWait(e *Engine, id string) {
	ctx := context.Background()
	e.Start(ctx)
	e.Enqueue(id)
	e.Stop()
}

func TestEngine_ProcessArticle_Success(t *testing.T) {
	article := testArticle("a1")
	repo := newFakeArticleRepository(article)
	publisher := &fakePublisher{}
	provider := &fakeProvider{
		extractFn: func(ctx context.Context, title, body string) (*ExtractionResult, error) {
			return &ExtractionResult{
				SummaryEN: "s-en", SummaryZH: "s-zh",
				Sentiment: "neutral", Urgency: "low",
			}, nil
		},
		embedFn: func(ctx context.Context, text string) ([]float32, error) {
			return goodEmbedding(), nil
		},
	}

	e := New(repo, provider, publisher, 1)
	runAndWait(e, article.ID)

	got := repo.articles[article.ID]
	assert.Equal(t, entity.ProcessingCompleted, got.ProcessingStatus)
	assert.True(t, got.LLMProcessed)
	assert.Equal(t, "s-en", got.SummaryEN)
	assert.Len(t, got.Embedding, entity.EmbeddingDimension)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, article.ID, publisher.published[0].ID)
}

func TestEngine_ProcessArticle_ExtractFails(t *testing.T) {
	article := testArticle("a2")
	repo := newFakeArticleRepository(article)
	provider := &fakeProvider{
		extractFn: func(ctx context.Context, title, body string) (*ExtractionResult, error) {
			return nil, fmt.Errorf("boom: not retryable")
		},
		embedFn: func(ctx context.Context, text string) ([]float32, error) {
			t.Fatal("embed should not be called when extract fails")
			return nil, nil
		},
	}

	e := New(repo, provider, &fakePublisher{}, 1)
	runAndWait(e, article.ID)

	got := repo.articles[article.ID]
	assert.Equal(t, entity.ProcessingFailed, got.ProcessingStatus)
	assert.NotEmpty(t, got.EnrichmentError)
}

func TestEngine_ProcessArticle_ValidationFails(t *testing.T) {
	article := testArticle("a3")
	repo := newFakeArticleRepository(article)
	provider := &fakeProvider{
		extractFn: func(ctx context.Context, title, body string) (*ExtractionResult, error) {
			return &ExtractionResult{SummaryEN: "s-en", SummaryZH: "s-zh", Sentiment: "furious", Urgency: "low"}, nil
		},
		embedFn: func(ctx context.Context, text string) ([]float32, error) {
			t.Fatal("embed should not be called when validation fails")
			return nil, nil
		},
	}

	e := New(repo, provider, &fakePublisher{}, 1)
	runAndWait(e, article.ID)

	got := repo.articles[article.ID]
	assert.Equal(t, entity.ProcessingFailed, got.ProcessingStatus)
}

func TestEngine_ProcessArticle_EmbeddingDimensionMismatch(t *testing.T) {
	article := testArticle("a4")
	repo := newFakeArticleRepository(article)
	provider := &fakeProvider{
		extractFn: func(ctx context.Context, title, body string) (*ExtractionResult, error) {
			return &ExtractionResult{SummaryEN: "s-en", SummaryZH: "s-zh", Sentiment: "neutral", Urgency: "low"}, nil
		},
		embedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.1, 0.2}, nil
		},
	}

	e := New(repo, provider, &fakePublisher{}, 1)
	runAndWait(e, article.ID)

	got := repo.articles[article.ID]
	assert.Equal(t, entity.ProcessingFailed, got.ProcessingStatus)
	assert.Contains(t, got.EnrichmentError, "dimension mismatch")
}

func TestEngine_ProcessArticle_SkipsAlreadyClaimed(t *testing.T) {
	article := testArticle("a5")
	article.ProcessingStatus = entity.ProcessingCompleted
	repo := newFakeArticleRepository(article)
	calls := 0
	provider := &fakeProvider{
		extractFn: func(ctx context.Context, title, body string) (*ExtractionResult, error) {
			calls++
			return &ExtractionResult{SummaryEN: "s-en", SummaryZH: "s-zh", Sentiment: "neutral", Urgency: "low"}, nil
		},
		embedFn: func(ctx context.Context, text string) ([]float32, error) {
			return goodEmbedding(), nil
		},
	}

	e := New(repo, provider, &fakePublisher{}, 1)
	runAndWait(e, article.ID)

	assert.Zero(t, calls)
	assert.Equal(t, entity.ProcessingCompleted, repo.articles[article.ID].ProcessingStatus)
}

func TestEngine_SweepStalePending_ReenqueuesAndProcesses(t *testing.T) {
	stale := testArticle("a6")
	fresh := testArticle("a7")
	fresh.ProcessingStatus = entity.ProcessingCompleted
	repo := newFakeArticleRepository(stale, fresh)
	publisher := &fakePublisher{}
	provider := &fakeProvider{
		extractFn: func(ctx context.Context, title, body string) (*ExtractionResult, error) {
			return &ExtractionResult{SummaryEN: "s-en", SummaryZH: "s-zh", Sentiment: "neutral", Urgency: "low"}, nil
		},
		embedFn: func(ctx context.Context, text string) ([]float32, error) {
			return goodEmbedding(), nil
		},
	}

	e := New(repo, provider, publisher, 1)
	ctx := context.Background()
	e.Start(ctx)

	n, err := e.SweepStalePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e.Stop()
	assert.Equal(t, entity.ProcessingCompleted, repo.articles[stale.ID].ProcessingStatus)
}
