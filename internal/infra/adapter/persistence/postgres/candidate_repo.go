package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

const candidateColumns = `id, url, feed_url, kind, discovery_method, discovery_query, status,
	quality_score, relevance_score, combined_score, sample_previews, validation_detail,
	auto_approved, created_at, validated_at, decided_at`

// CandidateRepository is a PostgreSQL implementation of repository.SourceCandidateRepository.
type CandidateRepository struct {
	db *sql.DB
}

// NewCandidateRepository builds a CandidateRepository.
func NewCandidateRepository(db *sql.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

var _ repository.SourceCandidateRepository = (*CandidateRepository)(nil)

func scanCandidate(row rowScanner) (*entity.SourceCandidate, error) {
	var c entity.SourceCandidate
	var feedURL, kind, discoveryMethod, discoveryQuery sql.NullString
	var samplePreviewsRaw, validationDetailRaw []byte
	var validatedAt, decidedAt sql.NullTime

	if err := row.Scan(
		&c.CandidateID, &c.URL, &feedURL, &kind, &discoveryMethod, &discoveryQuery, &c.Status,
		&c.QualityScore, &c.RelevanceScore, &c.CombinedScore, &samplePreviewsRaw, &validationDetailRaw,
		&c.AutoApproved, &c.CreatedAt, &validatedAt, &decidedAt,
	); err != nil {
		return nil, err
	}

	c.FeedURL = feedURL.String
	c.Kind = entity.SourceKind(kind.String)
	c.DiscoveryMethod = discoveryMethod.String
	c.DiscoveryQuery = discoveryQuery.String
	if validatedAt.Valid {
		t := validatedAt.Time
		c.ValidatedAt = &t
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		c.DecidedAt = &t
	}

	if err := unmarshalJSON(samplePreviewsRaw, &c.SamplePreviews); err != nil {
		return nil, fmt.Errorf("scanCandidate: sample_previews: %w", err)
	}
	if err := unmarshalJSON(validationDetailRaw, &c.ValidationDetail); err != nil {
		return nil, fmt.Errorf("scanCandidate: validation_detail: %w", err)
	}

	return &c, nil
}

func (r *CandidateRepository) Get(ctx context.Context, id string) (*entity.SourceCandidate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM source_candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return c, nil
}

func (r *CandidateRepository) ListByStatus(ctx context.Context, status entity.CandidateStatus) ([]*entity.SourceCandidate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM source_candidates WHERE status = $1 ORDER BY created_at ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("ListByStatus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []*entity.SourceCandidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByStatus: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByStatus: %w", err)
	}
	return candidates, nil
}

func (r *CandidateRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM source_candidates WHERE url = $1)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return exists, nil
}

func (r *CandidateRepository) Create(ctx context.Context, candidate *entity.SourceCandidate) error {
	samplePreviews, validationDetail, err := marshalCandidateJSON(candidate)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO source_candidates (`+candidateColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),$14,$15)`,
		candidate.CandidateID, candidate.URL, nullIfEmpty(candidate.FeedURL), nullIfEmpty(string(candidate.Kind)),
		nullIfEmpty(candidate.DiscoveryMethod), nullIfEmpty(candidate.DiscoveryQuery), candidate.Status,
		candidate.QualityScore, candidate.RelevanceScore, candidate.CombinedScore,
		samplePreviews, validationDetail, candidate.AutoApproved, candidate.ValidatedAt, candidate.DecidedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CandidateRepository) Update(ctx context.Context, candidate *entity.SourceCandidate) error {
	samplePreviews, validationDetail, err := marshalCandidateJSON(candidate)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE source_candidates SET url=$2, feed_url=$3, kind=$4, discovery_method=$5, discovery_query=$6,
	status=$7, quality_score=$8, relevance_score=$9, combined_score=$10, sample_previews=$11,
	validation_detail=$12, auto_approved=$13, validated_at=$14, decided_at=$15
WHERE id=$1`,
		candidate.CandidateID, candidate.URL, nullIfEmpty(candidate.FeedURL), nullIfEmpty(string(candidate.Kind)),
		nullIfEmpty(candidate.DiscoveryMethod), nullIfEmpty(candidate.DiscoveryQuery), candidate.Status,
		candidate.QualityScore, candidate.RelevanceScore, candidate.CombinedScore,
		samplePreviews, validationDetail, candidate.AutoApproved, candidate.ValidatedAt, candidate.DecidedAt)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

func marshalCandidateJSON(candidate *entity.SourceCandidate) (samplePreviews, validationDetail []byte, err error) {
	if samplePreviews, err = marshalJSON(candidate.SamplePreviews); err != nil {
		return nil, nil, fmt.Errorf("sample_previews: %w", err)
	}
	if validationDetail, err = marshalJSON(candidate.ValidationDetail); err != nil {
		return nil, nil, fmt.Errorf("validation_detail: %w", err)
	}
	return samplePreviews, validationDetail, nil
}
