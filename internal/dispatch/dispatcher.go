package dispatch

import (
	"context"
	"log/slog"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
	"catchup-feed/internal/webhook"
)

// WebhookEnqueuer is the delivery-side capability the Dispatcher needs
// from internal/webhook, declared here so this package does not need to
// know about Sender's worker-pool internals.
type WebhookEnqueuer interface {
	Enqueue(subscription *entity.Subscription, article *entity.Article)
}

// Dispatcher implements enrichment.Publisher: it fans a completed article
// out to every live push connection and every enabled webhook
// subscription whose filter matches. Grounded on the teacher's
// notify.Service.NotifyNewArticle (internal/usecase/notify/service.go),
// which does the same fan-out-without-blocking-the-caller over a fixed
// channel list; generalized here to per-connection/per-subscription
// predicate matching instead of a static enabled/disabled channel list.
type Dispatcher struct {
	registry      *Registry
	subscriptions repository.SubscriptionRepository
	webhooks      WebhookEnqueuer
}

// New builds a Dispatcher.
func New(registry *Registry, subscriptions repository.SubscriptionRepository, webhooks WebhookEnqueuer) *Dispatcher {
	return &Dispatcher{registry: registry, subscriptions: subscriptions, webhooks: webhooks}
}

// PublishCompleted fans article out to live connections and queues
// webhook deliveries for matching subscriptions. Called synchronously by
// the enrichment engine right after an article reaches
// ProcessingCompleted; it must not block on slow subscribers, so both
// paths are non-blocking from this call's perspective.
func (d *Dispatcher) PublishCompleted(article *entity.Article) {
	d.registry.Broadcast(article)
	d.dispatchWebhooks(article)
}

func (d *Dispatcher) dispatchWebhooks(article *entity.Article) {
	subs, err := d.subscriptions.ListByChannel(context.Background(), entity.ChannelWebhook)
	if err != nil {
		slog.Error("dispatch: failed to list webhook subscriptions", slog.Any("error", err))
		return
	}
	for _, sub := range subs {
		if !sub.Enabled {
			continue
		}
		if !sub.Filter.Matches(article) {
			continue
		}
		d.webhooks.Enqueue(sub, article)
	}
}

// compile-time assertion that webhook.Sender satisfies WebhookEnqueuer.
var _ WebhookEnqueuer = (*webhook.Sender)(nil)
