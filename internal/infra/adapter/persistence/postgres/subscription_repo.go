package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

const subscriptionColumns = `id, filter, channel, webhook_url, webhook_secret, frequency, enabled`

// SubscriptionRepository is a PostgreSQL implementation of repository.SubscriptionRepository.
type SubscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository builds a SubscriptionRepository.
func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

var _ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)

func scanSubscription(row rowScanner) (*entity.Subscription, error) {
	var s entity.Subscription
	var filterRaw []byte
	var webhookURL, webhookSecret, frequency sql.NullString

	if err := row.Scan(&s.ID, &filterRaw, &s.Channel, &webhookURL, &webhookSecret, &frequency, &s.Enabled); err != nil {
		return nil, err
	}

	s.WebhookURL = webhookURL.String
	s.WebhookSecret = webhookSecret.String
	s.Frequency = entity.Frequency(frequency.String)

	if err := unmarshalJSON(filterRaw, &s.Filter); err != nil {
		return nil, fmt.Errorf("scanSubscription: filter: %w", err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) Get(ctx context.Context, id string) (*entity.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	s, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return s, nil
}

func (r *SubscriptionRepository) ListEnabled(ctx context.Context) ([]*entity.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE enabled = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("ListEnabled: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSubscriptions(rows)
}

func (r *SubscriptionRepository) ListByChannel(ctx context.Context, channel entity.Channel) ([]*entity.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE channel = $1 AND enabled = TRUE`, channel)
	if err != nil {
		return nil, fmt.Errorf("ListByChannel: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSubscriptions(rows)
}

func scanSubscriptions(rows *sql.Rows) ([]*entity.Subscription, error) {
	var subs []*entity.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	filter, err := marshalJSON(sub.Filter)
	if err != nil {
		return fmt.Errorf("Create: filter: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO subscriptions (`+subscriptionColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		sub.ID, filter, sub.Channel, nullIfEmpty(sub.WebhookURL), nullIfEmpty(sub.WebhookSecret),
		nullIfEmpty(string(sub.Frequency)), sub.Enabled)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, sub *entity.Subscription) error {
	filter, err := marshalJSON(sub.Filter)
	if err != nil {
		return fmt.Errorf("Update: filter: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE subscriptions SET filter=$2, channel=$3, webhook_url=$4, webhook_secret=$5, frequency=$6, enabled=$7
WHERE id=$1`,
		sub.ID, filter, sub.Channel, nullIfEmpty(sub.WebhookURL), nullIfEmpty(sub.WebhookSecret),
		nullIfEmpty(string(sub.Frequency)), sub.Enabled)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

// WebhookDeliveryLogRepository is a PostgreSQL implementation of
// repository.WebhookDeliveryLogRepository.
type WebhookDeliveryLogRepository struct {
	db *sql.DB
}

// NewWebhookDeliveryLogRepository builds a WebhookDeliveryLogRepository.
func NewWebhookDeliveryLogRepository(db *sql.DB) *WebhookDeliveryLogRepository {
	return &WebhookDeliveryLogRepository{db: db}
}

var _ repository.WebhookDeliveryLogRepository = (*WebhookDeliveryLogRepository)(nil)

func (r *WebhookDeliveryLogRepository) Create(ctx context.Context, log *entity.WebhookDeliveryLog) error {
	return r.db.QueryRowContext(ctx, `
INSERT INTO webhook_delivery_logs (subscription_id, article_id, attempt, http_status, latency_ms,
	error_message, delivered_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id`,
		log.SubscriptionID, log.ArticleID, log.Attempt, log.HTTPStatus, log.LatencyMS,
		nullIfEmpty(log.ErrorMessage), log.DeliveredAt,
	).Scan(&log.ID)
}

func (r *WebhookDeliveryLogRepository) ListBySubscription(ctx context.Context, subscriptionID string, limit int) ([]entity.WebhookDeliveryLog, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, subscription_id, article_id, attempt, http_status, latency_ms, error_message, delivered_at
FROM webhook_delivery_logs WHERE subscription_id = $1 ORDER BY delivered_at DESC LIMIT $2`, subscriptionID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListBySubscription: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []entity.WebhookDeliveryLog
	for rows.Next() {
		var l entity.WebhookDeliveryLog
		var errorMessage sql.NullString
		if err := rows.Scan(&l.ID, &l.SubscriptionID, &l.ArticleID, &l.Attempt, &l.HTTPStatus,
			&l.LatencyMS, &errorMessage, &l.DeliveredAt); err != nil {
			return nil, fmt.Errorf("ListBySubscription: %w", err)
		}
		l.ErrorMessage = errorMessage.String
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListBySubscription: %w", err)
	}
	return logs, nil
}
