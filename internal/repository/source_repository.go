package repository

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
)

// SourceRepository persists and queries Source entities.
type SourceRepository interface {
	Get(ctx context.Context, id string) (*entity.Source, error)
	List(ctx context.Context) ([]*entity.Source, error)
	ListEnabled(ctx context.Context) ([]*entity.Source, error)
	Create(ctx context.Context, source *entity.Source) error
	Update(ctx context.Context, source *entity.Source) error
	Delete(ctx context.Context, id string) error
	TouchLastFetchedAt(ctx context.Context, id string, t time.Time) error
	UpdateHealth(ctx context.Context, id string, h entity.HealthStatus) error
}

// FetchLogRepository persists append-only fetch attempt records.
type FetchLogRepository interface {
	Create(ctx context.Context, log *entity.FetchLog) error
	ListBySource(ctx context.Context, sourceID string, since time.Time) ([]entity.FetchLog, error)
	ListRecent(ctx context.Context, sourceID string, limit int) ([]entity.FetchLog, error)
}
