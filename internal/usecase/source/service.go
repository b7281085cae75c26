package source

import (
	"context"
	"fmt"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

// CreateInput represents the input parameters for registering a new source.
type CreateInput struct {
	SourceID      string
	Name          string
	Kind          entity.SourceKind
	URL           string
	Language      string
	IntervalMin   int
	Priority      int
	FeedConfig    *entity.FeedConfig
	APIConfig     *entity.APIConfig
	ScraperConfig *entity.ScraperConfig
}

// UpdateInput represents the input parameters for updating an existing
// source. Empty/zero/nil fields are left unchanged.
type UpdateInput struct {
	SourceID    string
	Name        string
	URL         string
	IntervalMin int
	Priority    int
	Enabled     *bool
}

// Service provides source management use cases: registration, editing,
// and the read paths the scheduler and discovery loop depend on.
type Service struct {
	Repo    repository.SourceRepository
	FetchLogs repository.FetchLogRepository
}

// NewService builds a source Service backed by repo and fetchLogs.
func NewService(repo repository.SourceRepository, fetchLogs repository.FetchLogRepository) *Service {
	return &Service{Repo: repo, FetchLogs: fetchLogs}
}

// List retrieves all configured sources, enabled or not.
func (s *Service) List(ctx context.Context) ([]*entity.Source, error) {
	sources, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// Get retrieves a single source by ID.
func (s *Service) Get(ctx context.Context, id string) (*entity.Source, error) {
	if id == "" {
		return nil, &entity.ValidationError{Field: "source_id", Message: "is required"}
	}
	src, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if src == nil {
		return nil, ErrSourceNotFound
	}
	return src, nil
}

// Create registers a new source, validating its adapter configuration per
// entity.Source.Validate (api/scraper sources must carry a matching
// config block).
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Source, error) {
	if in.Name == "" {
		return nil, &entity.ValidationError{Field: "name", Message: "is required"}
	}
	if in.URL == "" {
		return nil, &entity.ValidationError{Field: "url", Message: "is required"}
	}
	if err := entity.ValidateURL(in.URL, true); err != nil {
		return nil, fmt.Errorf("validate url: %w", err)
	}

	src := &entity.Source{
		SourceID:      in.SourceID,
		Name:          in.Name,
		Kind:          in.Kind,
		URL:           in.URL,
		Language:      in.Language,
		IntervalMin:   in.IntervalMin,
		Priority:      in.Priority,
		Enabled:       true,
		FeedConfig:    in.FeedConfig,
		APIConfig:     in.APIConfig,
		ScraperConfig: in.ScraperConfig,
		Health:        entity.HealthDegraded,
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, src); err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	return src, nil
}

// Update modifies an existing source with the provided input.
func (s *Service) Update(ctx context.Context, in UpdateInput) error {
	if in.SourceID == "" {
		return &entity.ValidationError{Field: "source_id", Message: "is required"}
	}

	src, err := s.Repo.Get(ctx, in.SourceID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}
	if src == nil {
		return ErrSourceNotFound
	}

	if in.Name != "" {
		src.Name = in.Name
	}
	if in.URL != "" {
		if err := entity.ValidateURL(in.URL, true); err != nil {
			return fmt.Errorf("validate url: %w", err)
		}
		src.URL = in.URL
	}
	if in.IntervalMin > 0 {
		src.IntervalMin = in.IntervalMin
	}
	if in.Priority != 0 {
		src.Priority = in.Priority
	}
	if in.Enabled != nil {
		src.Enabled = *in.Enabled
	}

	if err := s.Repo.Update(ctx, src); err != nil {
		return fmt.Errorf("update source: %w", err)
	}
	return nil
}

// Delete removes a source by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &entity.ValidationError{Field: "source_id", Message: "is required"}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

// RecentFetchLogs returns the most recent fetch attempts for a source,
// used by the source health/diagnostics endpoint.
func (s *Service) RecentFetchLogs(ctx context.Context, sourceID string, limit int) ([]entity.FetchLog, error) {
	logs, err := s.FetchLogs.ListRecent(ctx, sourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list fetch logs: %w", err)
	}
	return logs, nil
}
