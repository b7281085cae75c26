package repository

import (
	"context"

	"catchup-feed/internal/domain/entity"
)

// SubscriptionRepository persists delivery subscriptions.
type SubscriptionRepository interface {
	Get(ctx context.Context, id string) (*entity.Subscription, error)
	ListEnabled(ctx context.Context) ([]*entity.Subscription, error)
	ListByChannel(ctx context.Context, channel entity.Channel) ([]*entity.Subscription, error)
	Create(ctx context.Context, sub *entity.Subscription) error
	Update(ctx context.Context, sub *entity.Subscription) error
	Delete(ctx context.Context, id string) error
}

// WebhookDeliveryLogRepository persists webhook delivery attempts.
type WebhookDeliveryLogRepository interface {
	Create(ctx context.Context, log *entity.WebhookDeliveryLog) error
	ListBySubscription(ctx context.Context, subscriptionID string, limit int) ([]entity.WebhookDeliveryLog, error)
}

// APIKeyRepository persists API credentials.
type APIKeyRepository interface {
	GetByHash(ctx context.Context, keyHash string) (*entity.APIKey, error)
	List(ctx context.Context) ([]*entity.APIKey, error)
	Create(ctx context.Context, key *entity.APIKey) error
	Update(ctx context.Context, key *entity.APIKey) error
	TouchLastUsedAt(ctx context.Context, id string) error
}
