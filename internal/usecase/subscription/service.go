package subscription

import (
	"context"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"

	"github.com/google/uuid"
)

// CreateInput describes a new subscription.
type CreateInput struct {
	Filter        entity.Filter
	Channel       entity.Channel
	WebhookURL    string
	WebhookSecret string
	Frequency     entity.Frequency
}

// UpdateInput describes a partial update. Zero-valued fields besides
// Enabled are left untouched, matching the teacher's source update
// semantics.
type UpdateInput struct {
	ID            string
	Filter        *entity.Filter
	WebhookURL    string
	WebhookSecret string
	Frequency     entity.Frequency
	Enabled       *bool
}

// Service implements subscription CRUD.
type Service struct {
	Repo repository.SubscriptionRepository
}

// NewService builds a Service.
func NewService(repo repository.SubscriptionRepository) *Service {
	return &Service{Repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*entity.Subscription, error) {
	return s.Repo.ListEnabled(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Subscription, error) {
	if id == "" {
		return nil, ErrInvalidSubscriptionID
	}
	sub, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Subscription, error) {
	sub := &entity.Subscription{
		ID:            uuid.NewString(),
		Filter:        in.Filter,
		Channel:       in.Channel,
		WebhookURL:    in.WebhookURL,
		WebhookSecret: in.WebhookSecret,
		Frequency:     in.Frequency,
		Enabled:       true,
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) Update(ctx context.Context, in UpdateInput) error {
	sub, err := s.Repo.Get(ctx, in.ID)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	if in.Filter != nil {
		sub.Filter = *in.Filter
	}
	if in.WebhookURL != "" {
		sub.WebhookURL = in.WebhookURL
	}
	if in.WebhookSecret != "" {
		sub.WebhookSecret = in.WebhookSecret
	}
	if in.Frequency != "" {
		sub.Frequency = in.Frequency
	}
	if in.Enabled != nil {
		sub.Enabled = *in.Enabled
	}

	if err := sub.Validate(); err != nil {
		return err
	}
	return s.Repo.Update(ctx, sub)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	return s.Repo.Delete(ctx, id)
}
