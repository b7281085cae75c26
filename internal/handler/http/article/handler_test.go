package article_test

import (
	"context"
	"errors"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

var errAlways = errors.New("boom")

// mockRepo implements repository.ArticleRepository for handler tests.
type mockRepo struct {
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

func (m *mockRepo) Get(ctx context.Context, id string) (*entity.Article, error) {
	return m.getFn(ctx, id)
}
func (m *mockRepo) GetByURL(ctx context.Context, url string) (*entity.Article, error) {
	return m.getByURLFn(ctx, url)
}
func (m *mockRepo) List(ctx context.Context, offset, limit int) ([]*entity.Article, error) {
	return m.listFn(ctx, offset, limit)
}
func (m *mockRepo) CountArticles(ctx context.Context) (int64, error) {
	return m.countFn(ctx)
}
func (m *mockRepo) Search(ctx context.Context, keywords []string, filters repository.ArticleSearchFilters, offset, limit int) ([]*entity.Article, error) {
	return m.searchFn(ctx, keywords, filters, offset, limit)
}
func (m *mockRepo) Create(ctx context.Context, a *entity.Article) error {
	return m.createFn(ctx, a)
}
func (m *mockRepo) Update(ctx context.Context, a *entity.Article) error {
	return m.updateFn(ctx, a)
}
func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	return m.existsFn(ctx, url)
}
func (m *mockRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	return m.existsBatchFn(ctx, urls)
}
func (m *mockRepo) FindBySimHashWithin(ctx context.Context, target uint64, maxDistance int, since time.Time) ([]*entity.Article, error) {
	return m.findBySimHashFn(ctx, target, maxDistance, since)
}
func (m *mockRepo) TryClaimProcessing(ctx context.Context, id string) (bool, error) {
	return m.tryClaimFn(ctx, id)
}
func (m *mockRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Article, error) {
	return m.listStalePendingFn(ctx, olderThan, limit)
}
func (m *mockRepo) SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]repository.ArticleSimilarity, error) {
	return m.similaritySearchFn(ctx, embedding, limit)
}
func (m *mockRepo) RelatedTo(ctx context.Context, id string, limit int, excludeSameSource bool) ([]repository.ArticleSimilarity, error) {
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
