package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

const apiKeyColumns = `id, name, key_hash, role, enabled, created_at, last_used_at`

// APIKeyRepository is a PostgreSQL implementation of repository.APIKeyRepository.
type APIKeyRepository struct {
	db *sql.DB
}

// NewAPIKeyRepository builds an APIKeyRepository.
func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

var _ repository.APIKeyRepository = (*APIKeyRepository)(nil)

func scanAPIKey(row rowScanner) (*entity.APIKey, error) {
	var k entity.APIKey
	var lastUsedAt sql.NullTime

	if err := row.Scan(&k.ID, &k.Name, &k.KeyHash, &k.Role, &k.Enabled, &k.CreatedAt, &lastUsedAt); err != nil {
		return nil, err
	}
	if lastUsedAt.Valid {
		t := lastUsedAt.Time
		k.LastUsedAt = &t
	}
	return &k, nil
}

func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*entity.APIKey, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = $1`, keyHash)
	k, err := scanAPIKey(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByHash: %w", err)
	}
	return k, nil
}

func (r *APIKeyRepository) List(ctx context.Context) ([]*entity.APIKey, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []*entity.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return keys, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key *entity.APIKey) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO api_keys (`+apiKeyColumns+`)
VALUES ($1,$2,$3,$4,$5,NOW(),$6)`,
		key.ID, key.Name, key.KeyHash, key.Role, key.Enabled, key.LastUsedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) Update(ctx context.Context, key *entity.APIKey) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE api_keys SET name=$2, key_hash=$3, role=$4, enabled=$5, last_used_at=$6
WHERE id=$1`,
		key.ID, key.Name, key.KeyHash, key.Role, key.Enabled, key.LastUsedAt)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) TouchLastUsedAt(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, time.Now()); err != nil {
		return fmt.Errorf("TouchLastUsedAt: %w", err)
	}
	return nil
}
