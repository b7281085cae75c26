package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math/bits"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"

	"github.com/pgvector/pgvector-go"
)

const articleColumns = `id, url, title, body_text, body_markdown, language, source_id,
	published_at, fetched_at, title_simhash, content_minhash, summary_en, summary_zh,
	transport_modes, primary_topic, secondary_topics, content_type, regions, entities,
	sentiment, market_impact, urgency, key_metrics, embedding, processing_status,
	llm_processed, enrichment_error`

// ArticleRepository is a PostgreSQL implementation of repository.ArticleRepository,
// built on database/sql with the pgx stdlib driver (see internal/infra/db.Open) and
// pgvector-go for the inline embedding column.
type ArticleRepository struct {
	db *sql.DB
}

// NewArticleRepository builds an ArticleRepository.
func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

var _ repository.ArticleRepository = (*ArticleRepository)(nil)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var a entity.Article
	var bodyMarkdown, language, summaryEN, summaryZH, primaryTopic, contentType sql.NullString
	var sentiment, marketImpact, urgency sql.NullString
	var transportModesRaw, secondaryTopicsRaw, regionsRaw, entitiesRaw, keyMetricsRaw []byte
	var minHashRaw []byte
	var simHashRaw int64
	var embeddingRaw sql.NullString

	if err := row.Scan(
		&a.ID, &a.URL, &a.Title, &a.BodyText, &bodyMarkdown, &language, &a.SourceID,
		&a.PublishedAt, &a.FetchedAt, &simHashRaw, &minHashRaw, &summaryEN, &summaryZH,
		&transportModesRaw, &primaryTopic, &secondaryTopicsRaw, &contentType, &regionsRaw, &entitiesRaw,
		&sentiment, &marketImpact, &urgency, &keyMetricsRaw, &embeddingRaw, &a.ProcessingStatus,
		&a.LLMProcessed, &a.EnrichmentError,
	); err != nil {
		return nil, err
	}

	a.TitleSimHash = uint64(simHashRaw)
	minHash, err := decodeMinHash(minHashRaw)
	if err != nil {
		return nil, fmt.Errorf("scanArticle: %w", err)
	}
	a.ContentMinHash = minHash

	a.BodyMarkdown = bodyMarkdown.String
	a.Language = language.String
	a.SummaryEN = summaryEN.String
	a.SummaryZH = summaryZH.String
	a.PrimaryTopic = primaryTopic.String
	a.ContentType = contentType.String
	a.Sentiment = entity.Sentiment(sentiment.String)
	a.MarketImpact = entity.MarketImpact(marketImpact.String)
	a.Urgency = entity.Urgency(urgency.String)

	if err := unmarshalJSON(transportModesRaw, &a.TransportModes); err != nil {
		return nil, fmt.Errorf("scanArticle: transport_modes: %w", err)
	}
	if err := unmarshalJSON(secondaryTopicsRaw, &a.SecondaryTopics); err != nil {
		return nil, fmt.Errorf("scanArticle: secondary_topics: %w", err)
	}
	if err := unmarshalJSON(regionsRaw, &a.Regions); err != nil {
		return nil, fmt.Errorf("scanArticle: regions: %w", err)
	}
	if err := unmarshalJSON(entitiesRaw, &a.Entities); err != nil {
		return nil, fmt.Errorf("scanArticle: entities: %w", err)
	}
	if err := unmarshalJSON(keyMetricsRaw, &a.KeyMetrics); err != nil {
		return nil, fmt.Errorf("scanArticle: key_metrics: %w", err)
	}

	if embeddingRaw.Valid {
		var vec pgvector.Vector
		if err := vec.Scan(embeddingRaw.String); err != nil {
			return nil, fmt.Errorf("scanArticle: embedding: %w", err)
		}
		a.Embedding = vec.Slice()
	}

	return &a, nil
}

func (r *ArticleRepository) Get(ctx context.Context, id string) (*entity.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (r *ArticleRepository) GetByURL(ctx context.Context, canonicalURL string) (*entity.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE url = $1`, canonicalURL)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByURL: %w", err)
	}
	return a, nil
}

func (r *ArticleRepository) List(ctx context.Context, offset, limit int) ([]*entity.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles ORDER BY published_at DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanArticles(rows)
}

func (r *ArticleRepository) CountArticles(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountArticles: %w", err)
	}
	return count, nil
}

// urgencyAtLeast returns the urgency values that satisfy Urgency.AtLeast(min).
func urgencyAtLeast(min entity.Urgency) []string {
	switch min {
	case entity.UrgencyHigh:
		return []string{string(entity.UrgencyHigh)}
	case entity.UrgencyMedium:
		return []string{string(entity.UrgencyMedium), string(entity.UrgencyHigh)}
	case entity.UrgencyLow:
		return []string{string(entity.UrgencyLow), string(entity.UrgencyMedium), string(entity.UrgencyHigh)}
	default:
		return nil
	}
}

// buildSearchClause assembles the WHERE clause and positional args for
// Search, mirroring the teacher's dynamic $N-placeholder query builder.
func buildSearchClause(keywords []string, filters repository.ArticleSearchFilters) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		args = append(args, "%"+kw+"%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR body_text ILIKE $%d)", len(args), len(args)))
	}

	if filters.SourceID != nil {
		args = append(args, *filters.SourceID)
		clauses = append(clauses, fmt.Sprintf("source_id = $%d", len(args)))
	}
	if filters.From != nil {
		args = append(args, *filters.From)
		clauses = append(clauses, fmt.Sprintf("published_at >= $%d", len(args)))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		clauses = append(clauses, fmt.Sprintf("published_at <= $%d", len(args)))
	}
	if len(filters.TopicIn) > 0 {
		args = append(args, pgTextArray(filters.TopicIn))
		idx := len(args)
		clauses = append(clauses, fmt.Sprintf("(primary_topic = ANY($%d) OR secondary_topics ?| $%d)", idx, idx))
	}
	if len(filters.RegionIn) > 0 {
		args = append(args, pgTextArray(filters.RegionIn))
		clauses = append(clauses, fmt.Sprintf("regions ?| $%d", len(args)))
	}
	if len(filters.LanguageIn) > 0 {
		args = append(args, pgTextArray(filters.LanguageIn))
		clauses = append(clauses, fmt.Sprintf("language = ANY($%d)", len(args)))
	}
	if len(filters.TransportModeIn) > 0 {
		args = append(args, pgTextArray(filters.TransportModeIn))
		clauses = append(clauses, fmt.Sprintf("transport_modes ?| $%d", len(args)))
	}
	if len(filters.SentimentIn) > 0 {
		args = append(args, pgTextArray(filters.SentimentIn))
		clauses = append(clauses, fmt.Sprintf("sentiment = ANY($%d)", len(args)))
	}
	if allowed := urgencyAtLeast(filters.UrgencyMin); len(allowed) > 0 {
		args = append(args, pgTextArray(allowed))
		clauses = append(clauses, fmt.Sprintf("urgency = ANY($%d)", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *ArticleRepository) Search(ctx context.Context, keywords []string, filters repository.ArticleSearchFilters, offset, limit int) ([]*entity.Article, error) {
	where, args := buildSearchClause(keywords, filters)
	query := `SELECT ` + articleColumns + ` FROM articles` + where + ` ORDER BY published_at DESC`
	args = append(args, offset, limit)
	query += fmt.Sprintf(" OFFSET $%d LIMIT $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanArticles(rows)
}

func scanArticles(rows *sql.Rows) ([]*entity.Article, error) {
	var articles []*entity.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *ArticleRepository) Create(ctx context.Context, article *entity.Article) error {
	return r.upsert(ctx, article, false)
}

func (r *ArticleRepository) Update(ctx context.Context, article *entity.Article) error {
	return r.upsert(ctx, article, true)
}

func (r *ArticleRepository) upsert(ctx context.Context, article *entity.Article, isUpdate bool) error {
	transportModes, err := marshalJSON(article.TransportModes)
	if err != nil {
		return fmt.Errorf("upsert: transport_modes: %w", err)
	}
	secondaryTopics, err := marshalJSON(article.SecondaryTopics)
	if err != nil {
		return fmt.Errorf("upsert: secondary_topics: %w", err)
	}
	regions, err := marshalJSON(article.Regions)
	if err != nil {
		return fmt.Errorf("upsert: regions: %w", err)
	}
	entities, err := marshalJSON(article.Entities)
	if err != nil {
		return fmt.Errorf("upsert: entities: %w", err)
	}
	keyMetrics, err := marshalJSON(article.KeyMetrics)
	if err != nil {
		return fmt.Errorf("upsert: key_metrics: %w", err)
	}

	var embedding interface{}
	if len(article.Embedding) > 0 {
		embedding = pgvector.NewVector(article.Embedding)
	}

	args := []interface{}{
		article.ID, article.URL, article.Title, article.BodyText, nullIfEmpty(article.BodyMarkdown),
		nullIfEmpty(article.Language), article.SourceID, article.PublishedAt, article.FetchedAt,
		int64(article.TitleSimHash), encodeMinHash(article.ContentMinHash),
		nullIfEmpty(article.SummaryEN), nullIfEmpty(article.SummaryZH), transportModes,
		nullIfEmpty(article.PrimaryTopic), secondaryTopics, nullIfEmpty(article.ContentType), regions, entities,
		nullIfEmpty(string(article.Sentiment)), nullIfEmpty(string(article.MarketImpact)), nullIfEmpty(string(article.Urgency)),
		keyMetrics, embedding, article.ProcessingStatus, article.LLMProcessed, nullIfEmpty(article.EnrichmentError),
	}

	if isUpdate {
		_, err = r.db.ExecContext(ctx, `
UPDATE articles SET url=$2, title=$3, body_text=$4, body_markdown=$5, language=$6, source_id=$7,
	published_at=$8, fetched_at=$9, title_simhash=$10, content_minhash=$11, summary_en=$12, summary_zh=$13,
	transport_modes=$14, primary_topic=$15, secondary_topics=$16, content_type=$17, regions=$18, entities=$19,
	sentiment=$20, market_impact=$21, urgency=$22, key_metrics=$23, embedding=$24, processing_status=$25,
	llm_processed=$26, enrichment_error=$27
WHERE id=$1`, args...)
		if err != nil {
			return fmt.Errorf("Update: %w", err)
		}
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO articles (`+articleColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27)`, args...)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// pgTextArray is the identity conversion that documents intent at call
// sites: the pgx stdlib driver encodes a []string query argument as a
// Postgres text[] natively, unlike lib/pq which needed pq.Array.
func pgTextArray(ss []string) []string { return ss }

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (r *ArticleRepository) ExistsByURL(ctx context.Context, canonicalURL string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE url = $1)`, canonicalURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return exists, nil
}

func (r *ArticleRepository) ExistsByURLBatch(ctx context.Context, canonicalURLs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(canonicalURLs))
	for _, u := range canonicalURLs {
		result[u] = false
	}
	if len(canonicalURLs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT url FROM articles WHERE url = ANY($1)`, pgTextArray(canonicalURLs))
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("ExistsByURLBatch: %w", err)
		}
		result[u] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: %w", err)
	}
	return result, nil
}

// FindBySimHashWithin scans the recent window in Postgres and filters by
// Hamming distance in Go: Postgres has no builtin popcount/XOR aggregate
// suited to a BIGINT comparison, so the cascade trades an index-only date
// filter for an in-process bit comparison (the window is bounded by since,
// which the dedup cascade already keeps small).
func (r *ArticleRepository) FindBySimHashWithin(ctx context.Context, target uint64, maxDistance int, since time.Time) ([]*entity.Article, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE fetched_at >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("FindBySimHashWithin: %w", err)
	}
	defer func() { _ = rows.Close() }()

	all, err := scanArticles(rows)
	if err != nil {
		return nil, fmt.Errorf("FindBySimHashWithin: %w", err)
	}

	var matches []*entity.Article
	for _, a := range all {
		if bits.OnesCount64(a.TitleSimHash^target) <= maxDistance {
			matches = append(matches, a)
		}
	}
	return matches, nil
}

func (r *ArticleRepository) TryClaimProcessing(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE articles SET processing_status = $1 WHERE id = $2 AND processing_status = $3`,
		entity.ProcessingInProgress, id, entity.ProcessingPending)
	if err != nil {
		return false, fmt.Errorf("TryClaimProcessing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("TryClaimProcessing: %w", err)
	}
	return n == 1, nil
}

func (r *ArticleRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE processing_status IN ($1, $2) AND fetched_at < $3
		 ORDER BY fetched_at ASC LIMIT $4`,
		entity.ProcessingPending, entity.ProcessingInProgress, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("ListStalePending: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanArticles(rows)
}

func (r *ArticleRepository) SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]repository.ArticleSimilarity, error) {
	vec := pgvector.NewVector(embedding)
	rows, err := r.db.QueryContext(ctx, `
SELECT `+articleColumns+`, 1 - (embedding <=> $1) AS similarity
FROM articles
WHERE processing_status = $2 AND embedding IS NOT NULL
ORDER BY embedding <=> $1
LIMIT $3`, vec, entity.ProcessingCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("SimilaritySearch: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSimilarities(rows)
}

func (r *ArticleRepository) RelatedTo(ctx context.Context, articleID string, limit int, excludeSameSource bool) ([]repository.ArticleSimilarity, error) {
	article, err := r.Get(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("RelatedTo: %w", err)
	}
	if article == nil || len(article.Embedding) == 0 {
		return nil, nil
	}

	where := "WHERE processing_status = $2 AND embedding IS NOT NULL AND id != $3"
	if excludeSameSource {
		where += " AND source_id != $5"
	}

	vec := pgvector.NewVector(article.Embedding)
	query := `
SELECT ` + articleColumns + `, 1 - (embedding <=> $1) AS similarity
FROM articles
` + where + `
ORDER BY embedding <=> $1
LIMIT $4`

	args := []interface{}{vec, entity.ProcessingCompleted, articleID, limit}
	if excludeSameSource {
		args = append(args, article.SourceID)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("RelatedTo: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSimilarities(rows)
}

func scanSimilarities(rows *sql.Rows) ([]repository.ArticleSimilarity, error) {
	var out []repository.ArticleSimilarity
	for rows.Next() {
		// scanArticle expects exactly the articleColumns projection; the
		// trailing similarity column is scanned separately by wrapping rows
		// in a small adapter that defers the extra arg.
		a, similarity, err := scanArticleWithSimilarity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, repository.ArticleSimilarity{Article: a, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanArticleWithSimilarity(rows *sql.Rows) (*entity.Article, float64, error) {
	var a entity.Article
	var bodyMarkdown, language, summaryEN, summaryZH, primaryTopic, contentType sql.NullString
	var sentiment, marketImpact, urgency sql.NullString
	var transportModesRaw, secondaryTopicsRaw, regionsRaw, entitiesRaw, keyMetricsRaw []byte
	var minHashRaw []byte
	var simHashRaw int64
	var embeddingRaw sql.NullString
	var similarity float64

	if err := rows.Scan(
		&a.ID, &a.URL, &a.Title, &a.BodyText, &bodyMarkdown, &language, &a.SourceID,
		&a.PublishedAt, &a.FetchedAt, &simHashRaw, &minHashRaw, &summaryEN, &summaryZH,
		&transportModesRaw, &primaryTopic, &secondaryTopicsRaw, &contentType, &regionsRaw, &entitiesRaw,
		&sentiment, &marketImpact, &urgency, &keyMetricsRaw, &embeddingRaw, &a.ProcessingStatus,
		&a.LLMProcessed, &a.EnrichmentError, &similarity,
	); err != nil {
		return nil, 0, err
	}

	a.TitleSimHash = uint64(simHashRaw)
	minHash, err := decodeMinHash(minHashRaw)
	if err != nil {
		return nil, 0, fmt.Errorf("scanArticleWithSimilarity: %w", err)
	}
	a.ContentMinHash = minHash
	a.BodyMarkdown = bodyMarkdown.String
	a.Language = language.String
	a.SummaryEN = summaryEN.String
	a.SummaryZH = summaryZH.String
	a.PrimaryTopic = primaryTopic.String
	a.ContentType = contentType.String
	a.Sentiment = entity.Sentiment(sentiment.String)
	a.MarketImpact = entity.MarketImpact(marketImpact.String)
	a.Urgency = entity.Urgency(urgency.String)

	if err := unmarshalJSON(transportModesRaw, &a.TransportModes); err != nil {
		return nil, 0, fmt.Errorf("scanArticleWithSimilarity: transport_modes: %w", err)
	}
	if err := unmarshalJSON(secondaryTopicsRaw, &a.SecondaryTopics); err != nil {
		return nil, 0, fmt.Errorf("scanArticleWithSimilarity: secondary_topics: %w", err)
	}
	if err := unmarshalJSON(regionsRaw, &a.Regions); err != nil {
		return nil, 0, fmt.Errorf("scanArticleWithSimilarity: regions: %w", err)
	}
	if err := unmarshalJSON(entitiesRaw, &a.Entities); err != nil {
		return nil, 0, fmt.Errorf("scanArticleWithSimilarity: entities: %w", err)
	}
	if err := unmarshalJSON(keyMetricsRaw, &a.KeyMetrics); err != nil {
		return nil, 0, fmt.Errorf("scanArticleWithSimilarity: key_metrics: %w", err)
	}
	if embeddingRaw.Valid {
		var vec pgvector.Vector
		if err := vec.Scan(embeddingRaw.String); err != nil {
			return nil, 0, fmt.Errorf("scanArticleWithSimilarity: embedding: %w", err)
		}
		a.Embedding = vec.Slice()
	}

	return &a, similarity, nil
}
