package repository

import (
	"context"

	"catchup-feed/internal/domain/entity"
)

// SourceCandidateRepository persists discovery output.
type SourceCandidateRepository interface {
	Get(ctx context.Context, id string) (*entity.SourceCandidate, error)
	ListByStatus(ctx context.Context, status entity.CandidateStatus) ([]*entity.SourceCandidate, error)
	ExistsByURL(ctx context.Context, url string) (bool, error)
	Create(ctx context.Context, candidate *entity.SourceCandidate) error
	Update(ctx context.Context, candidate *entity.SourceCandidate) error
}
