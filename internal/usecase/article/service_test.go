package article_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"catchup-feed/internal/common/pagination"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
	"catchup-feed/internal/usecase/article"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockArticleRepo implements repository.ArticleRepository via fn fields so
// each test wires only the methods it exercises.
type mockArticleRepo struct {
	getFn              func(ctx context.Context, id string) (*entity.Article, error)
	getByURLFn         func(ctx context.Context, url string) (*entity.Article, error)
	listFn             func(ctx context.Context, offset, limit int) ([]*entity.Article, error)
	countFn            func(ctx context.Context) (int64, error)
	searchFn           func(ctx context.Context, keywords []string, filters repository.ArticleSearchFilters, offset, limit int) ([]*entity.Article, error)
	createFn           func(ctx context.Context, a *entity.Article) error
	updateFn           func(ctx context.Context, a *entity.Article) error
	deleteFn           func(ctx context.Context, id string) error
	existsFn           func(ctx context.Context, url string) (bool, error)
	existsBatchFn      func(ctx context.Context, urls []string) (map[string]bool, error)
	findBySimHashFn    func(ctx context.Context, target uint64, maxDistance int, since time.Time) ([]*entity.Article, error)
	tryClaimFn         func(ctx context.Context, id string) (bool, error)
	listStalePendingFn func(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Article, error)
	similaritySearchFn func(ctx context.Context, embedding []float32, limit int) ([]repository.ArticleSimilarity, error)
	relatedToFn        func(ctx context.Context, id string, limit int, excludeSameSource bool) ([]repository.ArticleSimilarity, error)
}

func (m *mockArticleRepo) Get(ctx context.Context, id string) (*entity.Article, error) {
	return m.getFn(ctx, id)
}
func (m *mockArticleRepo) GetByURL(ctx context.Context, url string) (*entity.Article, error) {
	return m.getByURLFn(ctx, url)
}
func (m *mockArticleRepo) List(ctx context.Context, offset, limit int) ([]*entity.Article, error) {
	return m.listFn(ctx, offset, limit)
}
func (m *mockArticleRepo) CountArticles(ctx context.Context) (int64, error) {
	return m.countFn(ctx)
}
func (m *mockArticleRepo) Search(ctx context.Context, keywords []string, filters repository.ArticleSearchFilters, offset, limit int) ([]*entity.Article, error) {
	return m.searchFn(ctx, keywords, filters, offset, limit)
}
func (m *mockArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	return m.createFn(ctx, a)
}
func (m *mockArticleRepo) Update(ctx context.Context, a *entity.Article) error {
	return m.updateFn(ctx, a)
}
func (m *mockArticleRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	return m.existsFn(ctx, url)
}
func (m *mockArticleRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	return m.existsBatchFn(ctx, urls)
}
func (m *mockArticleRepo) FindBySimHashWithin(ctx context.Context, target uint64, maxDistance int, since time.Time) ([]*entity.Article, error) {
	return m.findBySimHashFn(ctx, target, maxDistance, since)
}
func (m *mockArticleRepo) TryClaimProcessing(ctx context.Context, id string) (bool, error) {
	return m.tryClaimFn(ctx, id)
}
func (m *mockArticleRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Article, error) {
	return m.listStalePendingFn(ctx, olderThan, limit)
}
func (m *mockArticleRepo) SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]repository.ArticleSimilarity, error) {
	return m.similaritySearchFn(ctx, embedding, limit)
}
func (m *mockArticleRepo) RelatedTo(ctx context.Context, id string, limit int, excludeSameSource bool) ([]repository.ArticleSimilarity, error) {
	return m.relatedToFn(ctx, id, limit, excludeSameSource)
}

func completedArticle(id string) *entity.Article {
	return &entity.Article{
		ID:               id,
		Title:            "Red Sea diversions push freight rates higher",
		ProcessingStatus: entity.ProcessingCompleted,
		Embedding:        make([]float32, entity.EmbeddingDimension),
		Sentiment:        entity.SentimentNegative,
	}
}

func TestService_List(t *testing.T) {
	repo := &mockArticleRepo{
		countFn: func(ctx context.Context) (int64, error) { return 42, nil },
		listFn: func(ctx context.Context, offset, limit int) ([]*entity.Article, error) {
			assert.Equal(t, 20, offset)
			assert.Equal(t, 20, limit)
			return []*entity.Article{completedArticle("a1")}, nil
		},
	}
	svc := article.NewService(repo)

	result, err := svc.List(context.Background(), pagination.Params{Page: 2, Limit: 20})

	require.NoError(t, err)
	assert.Len(t, result.Data, 1)
	assert.Equal(t, int64(42), result.Pagination.Total)
	assert.Equal(t, 3, result.Pagination.TotalPages)
}

func TestService_List_CountError(t *testing.T) {
	repo := &mockArticleRepo{
		countFn: func(ctx context.Context) (int64, error) { return 0, errors.New("db down") },
	}
	svc := article.NewService(repo)

	_, err := svc.List(context.Background(), pagination.Params{Page: 1, Limit: 20})

	assert.Error(t, err)
}

func TestService_Get_NotFound(t *testing.T) {
	repo := &mockArticleRepo{
		getFn: func(ctx context.Context, id string) (*entity.Article, error) { return nil, nil },
	}
	svc := article.NewService(repo)

	_, err := svc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, article.ErrArticleNotFound)
}

func TestService_Get_EmptyID(t *testing.T) {
	svc := article.NewService(&mockArticleRepo{})

	_, err := svc.Get(context.Background(), "")

	assert.ErrorIs(t, err, article.ErrInvalidArticleID)
}

func TestService_Get_Found(t *testing.T) {
	want := completedArticle("a1")
	repo := &mockArticleRepo{
		getFn: func(ctx context.Context, id string) (*entity.Article, error) {
			assert.Equal(t, "a1", id)
			return want, nil
		},
	}
	svc := article.NewService(repo)

	got, err := svc.Get(context.Background(), "a1")

	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestService_Search(t *testing.T) {
	repo := &mockArticleRepo{
		searchFn: func(ctx context.Context, keywords []string, filters repository.ArticleSearchFilters, offset, limit int) ([]*entity.Article, error) {
			assert.Equal(t, []string{"tariffs"}, keywords)
			return []*entity.Article{completedArticle("a1"), completedArticle("a2")}, nil
		},
	}
	svc := article.NewService(repo)

	result, err := svc.Search(context.Background(), []string{"tariffs"}, repository.ArticleSearchFilters{}, pagination.Params{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.Len(t, result.Data, 2)
}

func TestService_SimilaritySearch_RejectsWrongDimension(t *testing.T) {
	svc := article.NewService(&mockArticleRepo{})

	_, err := svc.SimilaritySearch(context.Background(), []float32{0.1, 0.2}, 10)

	assert.ErrorIs(t, err, article.ErrNotEnriched)
}

func TestService_SimilaritySearch(t *testing.T) {
	query := make([]float32, entity.EmbeddingDimension)
	repo := &mockArticleRepo{
		similaritySearchFn: func(ctx context.Context, embedding []float32, limit int) ([]repository.ArticleSimilarity, error) {
			assert.Equal(t, 5, limit)
			return []repository.ArticleSimilarity{{Article: completedArticle("a1"), Similarity: 0.92}}, nil
		},
	}
	svc := article.NewService(repo)

	got, err := svc.SimilaritySearch(context.Background(), query, 5)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_RelatedTo_NotEnriched(t *testing.T) {
	repo := &mockArticleRepo{
		getFn: func(ctx context.Context, id string) (*entity.Article, error) {
			return &entity.Article{ID: id, ProcessingStatus: entity.ProcessingPending}, nil
		},
	}
	svc := article.NewService(repo)

	_, err := svc.RelatedTo(context.Background(), "a1", 5, false)

	assert.ErrorIs(t, err, article.ErrNotEnriched)
}

func TestService_RelatedTo(t *testing.T) {
	repo := &mockArticleRepo{
		getFn: func(ctx context.Context, id string) (*entity.Article, error) {
			return completedArticle(id), nil
		},
		relatedToFn: func(ctx context.Context, id string, limit int, excludeSameSource bool) ([]repository.ArticleSimilarity, error) {
			assert.Equal(t, "a1", id)
			return []repository.ArticleSimilarity{{Article: completedArticle("a2"), Similarity: 0.8}}, nil
		},
	}
	svc := article.NewService(repo)

	got, err := svc.RelatedTo(context.Background(), "a1", 5, false)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}
