package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"catchup-feed/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
)

func baseAPIKey() *entity.APIKey {
	return &entity.APIKey{
		ID:      "key-1",
		Name:    "ops-dashboard",
		KeyHash: "abc123",
		Role:    entity.RoleReader,
		Enabled: true,
	}
}

func TestAPIKeyRepository_GetByHash_Found(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	k := baseAPIKey()
	rows := sqlmock.NewRows([]string{"id", "name", "key_hash", "role", "enabled", "created_at", "last_used_at"}).
		AddRow(k.ID, k.Name, k.KeyHash, k.Role, k.Enabled, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `)).WithArgs(k.KeyHash).WillReturnRows(rows)

	repo := NewAPIKeyRepository(db)
	got, err := repo.GetByHash(context.Background(), k.KeyHash)
	if err != nil {
		t.Fatalf("GetByHash returned error: %v", err)
	}
	if got == nil || got.Name != k.Name {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestAPIKeyRepository_GetByHash_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `)).WillReturnError(sql.ErrNoRows)

	repo := NewAPIKeyRepository(db)
	got, err := repo.GetByHash(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByHash returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestAPIKeyRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	k := baseAPIKey()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO api_keys`)).WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewAPIKeyRepository(db)
	if err := repo.Create(context.Background(), k); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
}

func TestAPIKeyRepository_TouchLastUsedAt(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE api_keys SET last_used_at = $2 WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewAPIKeyRepository(db)
	if err := repo.TouchLastUsedAt(context.Background(), "key-1"); err != nil {
		t.Fatalf("TouchLastUsedAt returned error: %v", err)
	}
}
