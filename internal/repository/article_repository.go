// Package repository declares the persistence-facing interfaces consumed by
// the use-case layer. Concrete implementations live under
// internal/infra/persistence.
package repository

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
)

// ArticleSearchFilters holds the optional filters accepted by Search.
type ArticleSearchFilters struct {
	SourceID        *string
	From            *time.Time
	To              *time.Time
	TopicIn         []string
	RegionIn        []string
	LanguageIn      []string
	TransportModeIn []string
	SentimentIn     []string
	UrgencyMin      entity.Urgency
}

// ArticleRepository persists and queries Article entities.
type ArticleRepository interface {
	Get(ctx context.Context, id string) (*entity.Article, error)
	GetByURL(ctx context.Context, canonicalURL string) (*entity.Article, error)
	List(ctx context.Context, offset, limit int) ([]*entity.Article, error)
	CountArticles(ctx context.Context) (int64, error)
	Search(ctx context.Context, keywords []string, filters ArticleSearchFilters, offset, limit int) ([]*entity.Article, error)

	Create(ctx context.Context, article *entity.Article) error
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, id string) error

	ExistsByURL(ctx context.Context, canonicalURL string) (bool, error)
	ExistsByURLBatch(ctx context.Context, canonicalURLs []string) (map[string]bool, error)

	// FindBySimHashWithin returns articles whose title SimHash is within
	// maxDistance Hamming bits of target, restricted to articles fetched
	// after since (the dedup cascade only needs to compare against a
	// recent window).
	FindBySimHashWithin(ctx context.Context, target uint64, maxDistance int, since time.Time) ([]*entity.Article, error)

	// TryClaimProcessing performs a compare-and-swap from pending to
	// processing, returning false without error if another worker already
	// claimed the article (entity.ErrAlreadyProcessing semantics).
	TryClaimProcessing(ctx context.Context, id string) (bool, error)

	// ListStalePending returns articles whose ProcessingStatus is pending
	// or processing and whose FetchedAt predates olderThan — candidates
	// for the enrichment backstop sweep (spec.md §4.7).
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Article, error)

	// SimilaritySearch returns the nearest articles to embedding by cosine
	// distance, restricted to completed articles.
	SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]ArticleSimilarity, error)

	// RelatedTo returns the nearest articles to the given article's own
	// embedding, excluding the article itself. When excludeSameSource is
	// true, articles from the same source are also excluded.
	RelatedTo(ctx context.Context, articleID string, limit int, excludeSameSource bool) ([]ArticleSimilarity, error)
}

// ArticleSimilarity pairs an article with a cosine-similarity score in
// [0, 1], 1 being identical.
type ArticleSimilarity struct {
	Article    *entity.Article
	Similarity float64
}
