package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

const sourceColumns = `id, name, kind, url, language, interval_min, priority, enabled,
	feed_config, api_config, scraper_config, last_fetched_at, health`

// SourceRepository is a PostgreSQL implementation of repository.SourceRepository.
type SourceRepository struct {
	db *sql.DB
}

// NewSourceRepository builds a SourceRepository.
func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

var _ repository.SourceRepository = (*SourceRepository)(nil)

func scanSource(row rowScanner) (*entity.Source, error) {
	var s entity.Source
	var language sql.NullString
	var feedConfigRaw, apiConfigRaw, scraperConfigRaw []byte
	var lastFetchedAt sql.NullTime

	if err := row.Scan(
		&s.SourceID, &s.Name, &s.Kind, &s.URL, &language, &s.IntervalMin, &s.Priority, &s.Enabled,
		&feedConfigRaw, &apiConfigRaw, &scraperConfigRaw, &lastFetchedAt, &s.Health,
	); err != nil {
		return nil, err
	}

	s.Language = language.String
	if lastFetchedAt.Valid {
		t := lastFetchedAt.Time
		s.LastFetchedAt = &t
	}

	if len(feedConfigRaw) > 0 {
		var cfg entity.FeedConfig
		if err := unmarshalJSON(feedConfigRaw, &cfg); err != nil {
			return nil, fmt.Errorf("scanSource: feed_config: %w", err)
		}
		s.FeedConfig = &cfg
	}
	if len(apiConfigRaw) > 0 {
		var cfg entity.APIConfig
		if err := unmarshalJSON(apiConfigRaw, &cfg); err != nil {
			return nil, fmt.Errorf("scanSource: api_config: %w", err)
		}
		s.APIConfig = &cfg
	}
	if len(scraperConfigRaw) > 0 {
		var cfg entity.ScraperConfig
		if err := unmarshalJSON(scraperConfigRaw, &cfg); err != nil {
			return nil, fmt.Errorf("scanSource: scraper_config: %w", err)
		}
		s.ScraperConfig = &cfg
	}

	return &s, nil
}

func (r *SourceRepository) Get(ctx context.Context, id string) (*entity.Source, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = $1`, id)
	s, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return s, nil
}

func (r *SourceRepository) List(ctx context.Context) ([]*entity.Source, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sourceColumns+` FROM sources ORDER BY priority DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSources(rows)
}

func (r *SourceRepository) ListEnabled(ctx context.Context) ([]*entity.Source, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE enabled = TRUE ORDER BY priority DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("ListEnabled: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSources(rows)
}

func scanSources(rows *sql.Rows) ([]*entity.Source, error) {
	var sources []*entity.Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *SourceRepository) Create(ctx context.Context, source *entity.Source) error {
	feedConfig, apiConfig, scraperConfig, err := marshalSourceConfigs(source)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	if source.Health == "" {
		source.Health = entity.HealthHealthy
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO sources (`+sourceColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		source.SourceID, source.Name, source.Kind, source.URL, nullIfEmpty(source.Language),
		source.IntervalMin, source.Priority, source.Enabled, feedConfig, apiConfig, scraperConfig,
		source.LastFetchedAt, source.Health)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *SourceRepository) Update(ctx context.Context, source *entity.Source) error {
	feedConfig, apiConfig, scraperConfig, err := marshalSourceConfigs(source)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE sources SET name=$2, kind=$3, url=$4, language=$5, interval_min=$6, priority=$7, enabled=$8,
	feed_config=$9, api_config=$10, scraper_config=$11, last_fetched_at=$12, health=$13
WHERE id=$1`,
		source.SourceID, source.Name, source.Kind, source.URL, nullIfEmpty(source.Language),
		source.IntervalMin, source.Priority, source.Enabled, feedConfig, apiConfig, scraperConfig,
		source.LastFetchedAt, source.Health)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

func marshalSourceConfigs(source *entity.Source) (feedConfig, apiConfig, scraperConfig []byte, err error) {
	if source.FeedConfig != nil {
		if feedConfig, err = marshalJSON(source.FeedConfig); err != nil {
			return nil, nil, nil, fmt.Errorf("feed_config: %w", err)
		}
	}
	if source.APIConfig != nil {
		if apiConfig, err = marshalJSON(source.APIConfig); err != nil {
			return nil, nil, nil, fmt.Errorf("api_config: %w", err)
		}
	}
	if source.ScraperConfig != nil {
		if scraperConfig, err = marshalJSON(source.ScraperConfig); err != nil {
			return nil, nil, nil, fmt.Errorf("scraper_config: %w", err)
		}
	}
	return feedConfig, apiConfig, scraperConfig, nil
}

func (r *SourceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (r *SourceRepository) TouchLastFetchedAt(ctx context.Context, id string, t time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE sources SET last_fetched_at = $2 WHERE id = $1`, id, t); err != nil {
		return fmt.Errorf("TouchLastFetchedAt: %w", err)
	}
	return nil
}

func (r *SourceRepository) UpdateHealth(ctx context.Context, id string, h entity.HealthStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE sources SET health = $2 WHERE id = $1`, id, h); err != nil {
		return fmt.Errorf("UpdateHealth: %w", err)
	}
	return nil
}

// FetchLogRepository is a PostgreSQL implementation of repository.FetchLogRepository.
type FetchLogRepository struct {
	db *sql.DB
}

// NewFetchLogRepository builds a FetchLogRepository.
func NewFetchLogRepository(db *sql.DB) *FetchLogRepository {
	return &FetchLogRepository{db: db}
}

var _ repository.FetchLogRepository = (*FetchLogRepository)(nil)

func (r *FetchLogRepository) Create(ctx context.Context, log *entity.FetchLog) error {
	return r.db.QueryRowContext(ctx, `
INSERT INTO fetch_logs (source_id, started_at, completed_at, status, articles_found, articles_new,
	articles_dedup, error_message, duration_ms)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id`,
		log.SourceID, log.StartedAt, nullIfZeroTime(log.CompletedAt), log.Status,
		log.ArticlesFound, log.ArticlesNew, log.ArticlesDedup, nullIfEmpty(log.ErrorMessage), log.DurationMS,
	).Scan(&log.ID)
}

func nullIfZeroTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func (r *FetchLogRepository) ListBySource(ctx context.Context, sourceID string, since time.Time) ([]entity.FetchLog, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, source_id, started_at, completed_at, status, articles_found, articles_new, articles_dedup,
	error_message, duration_ms
FROM fetch_logs WHERE source_id = $1 AND started_at >= $2 ORDER BY started_at DESC`, sourceID, since)
	if err != nil {
		return nil, fmt.Errorf("ListBySource: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanFetchLogs(rows)
}

func (r *FetchLogRepository) ListRecent(ctx context.Context, sourceID string, limit int) ([]entity.FetchLog, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, source_id, started_at, completed_at, status, articles_found, articles_new, articles_dedup,
	error_message, duration_ms
FROM fetch_logs WHERE source_id = $1 ORDER BY started_at DESC LIMIT $2`, sourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanFetchLogs(rows)
}

func scanFetchLogs(rows *sql.Rows) ([]entity.FetchLog, error) {
	var logs []entity.FetchLog
	for rows.Next() {
		var l entity.FetchLog
		var completedAt sql.NullTime
		var errorMessage sql.NullString
		if err := rows.Scan(&l.ID, &l.SourceID, &l.StartedAt, &completedAt, &l.Status,
			&l.ArticlesFound, &l.ArticlesNew, &l.ArticlesDedup, &errorMessage, &l.DurationMS); err != nil {
			return nil, err
		}
		l.CompletedAt = completedAt.Time
		l.ErrorMessage = errorMessage.String
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
