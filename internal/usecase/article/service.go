package article

import (
	"context"

	"catchup-feed/internal/common/pagination"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

// ListResult is a page of articles with accompanying pagination metadata.
type ListResult struct {
	Data       []*entity.Article
	Pagination pagination.Metadata
}

// Service implements read and search use cases over enriched articles.
// The pipeline (internal/usecase/fetch, internal/enrichment) owns writes;
// this service never creates, updates, or deletes an article.
type Service struct {
	Repo repository.ArticleRepository
}

// NewService builds an article Service backed by repo.
func NewService(repo repository.ArticleRepository) *Service {
	return &Service{Repo: repo}
}

// List returns a page of articles ordered by most recently published.
func (s *Service) List(ctx context.Context, params pagination.Params) (ListResult, error) {
	total, err := s.Repo.CountArticles(ctx)
	if err != nil {
		return ListResult{}, err
	}

	offset := pagination.CalculateOffset(params.Page, params.Limit)
	articles, err := s.Repo.List(ctx, offset, params.Limit)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Data: articles,
		Pagination: pagination.Metadata{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: pagination.CalculateTotalPages(total, params.Limit),
		},
	}, nil
}

// Get returns a single article by ID.
func (s *Service) Get(ctx context.Context, id string) (*entity.Article, error) {
	if id == "" {
		return nil, ErrInvalidArticleID
	}
	a, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrArticleNotFound
	}
	return a, nil
}

// Search performs a keyword and filter search over articles, paginated.
func (s *Service) Search(ctx context.Context, keywords []string, filters repository.ArticleSearchFilters, params pagination.Params) (ListResult, error) {
	offset := pagination.CalculateOffset(params.Page, params.Limit)
	articles, err := s.Repo.Search(ctx, keywords, filters, offset, params.Limit)
	if err != nil {
		return ListResult{}, err
	}

	// Search has no dedicated count query; report what this page returned.
	// A short page (fewer rows than the limit) signals the final page.
	total := int64(offset + len(articles))
	return ListResult{
		Data: articles,
		Pagination: pagination.Metadata{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: pagination.CalculateTotalPages(total, params.Limit),
		},
	}, nil
}

// SimilaritySearch returns the articles whose embedding is nearest to query
// by cosine distance. Callers are expected to have already produced query
// via the same embedding provider used during enrichment.
func (s *Service) SimilaritySearch(ctx context.Context, query []float32, limit int) ([]repository.ArticleSimilarity, error) {
	if len(query) != entity.EmbeddingDimension {
		return nil, ErrNotEnriched
	}
	return s.Repo.SimilaritySearch(ctx, query, limit)
}

// RelatedTo returns articles related to id by embedding similarity. Returns
// ErrNotEnriched if id refers to an article that has not completed
// enrichment (no embedding to compare against).
func (s *Service) RelatedTo(ctx context.Context, id string, limit int, excludeSameSource bool) ([]repository.ArticleSimilarity, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsComplete() {
		return nil, ErrNotEnriched
	}
	return s.Repo.RelatedTo(ctx, id, limit, excludeSameSource)
}
