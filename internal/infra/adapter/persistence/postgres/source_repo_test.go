package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"catchup-feed/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
)

func newSourceRowColumns() []string {
	return []string{
		"id", "name", "kind", "url", "language", "interval_min", "priority", "enabled",
		"feed_config", "api_config", "scraper_config", "last_fetched_at", "health",
	}
}

func newSourceRow(s *entity.Source) *sqlmock.Rows {
	rows := sqlmock.NewRows(newSourceRowColumns())
	rows.AddRow(
		s.SourceID, s.Name, s.Kind, s.URL, nullIfEmpty(s.Language), s.IntervalMin, s.Priority, s.Enabled,
		nil, nil, nil, s.LastFetchedAt, s.Health,
	)
	return rows
}

func baseSource() *entity.Source {
	return &entity.Source{
		SourceID:    "src-1",
		Name:        "Example Feed",
		Kind:        entity.SourceKindUniversal,
		URL:         "https://example.com/feed",
		IntervalMin: 30,
		Priority:    5,
		Enabled:     true,
		Health:      entity.HealthHealthy,
	}
}

func TestSourceRepository_Get_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	s := baseSource()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `)).
		WithArgs(s.SourceID).
		WillReturnRows(newSourceRow(s))

	repo := NewSourceRepository(db)
	got, err := repo.Get(context.Background(), s.SourceID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if diff := cmp.Diff(s.Name, got.Name); diff != "" {
		t.Errorf("name mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(s.URL, got.URL); diff != "" {
		t.Errorf("url mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceRepository_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `)).WillReturnError(sql.ErrNoRows)

	repo := NewSourceRepository(db)
	got, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestSourceRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	s := baseSource()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sources`)).WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSourceRepository(db)
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
}

func TestSourceRepository_UpdateHealth(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sources SET health = $2 WHERE id = $1`)).
		WithArgs("src-1", entity.HealthDegraded).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSourceRepository(db)
	if err := repo.UpdateHealth(context.Background(), "src-1", entity.HealthDegraded); err != nil {
		t.Fatalf("UpdateHealth returned error: %v", err)
	}
}

func TestSourceRepository_TouchLastFetchedAt(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sources SET last_fetched_at = $2 WHERE id = $1`)).
		WithArgs("src-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSourceRepository(db)
	if err := repo.TouchLastFetchedAt(context.Background(), "src-1", now); err != nil {
		t.Fatalf("TouchLastFetchedAt returned error: %v", err)
	}
}

func TestFetchLogRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	log := &entity.FetchLog{
		SourceID:  "src-1",
		StartedAt: time.Now(),
		Status:    entity.FetchSuccess,
	}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO fetch_logs`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	repo := NewFetchLogRepository(db)
	if err := repo.Create(context.Background(), log); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if log.ID != 42 {
		t.Fatalf("expected id=42, got %d", log.ID)
	}
}

func TestFetchLogRepository_ListRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	cols := []string{"id", "source_id", "started_at", "completed_at", "status", "articles_found",
		"articles_new", "articles_dedup", "error_message", "duration_ms"}
	rows := sqlmock.NewRows(cols).AddRow(int64(1), "src-1", time.Now(), time.Now(), entity.FetchSuccess, 10, 4, 6, nil, int64(120))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, source_id, started_at, completed_at, status, articles_found, articles_new, articles_dedup,
	error_message, duration_ms
FROM fetch_logs WHERE source_id = $1 ORDER BY started_at DESC LIMIT $2`)).
		WithArgs("src-1", 5).
		WillReturnRows(rows)

	repo := NewFetchLogRepository(db)
	got, err := repo.ListRecent(context.Background(), "src-1", 5)
	if err != nil {
		t.Fatalf("ListRecent returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 log, got %d", len(got))
	}
}
