package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

type fakeSubscriptionRepository struct {
	repository.SubscriptionRepository

	subs []*entity.Subscription
}

func (f *fakeSubscriptionRepository) ListByChannel(ctx context.Context, channel entity.Channel) ([]*entity.Subscription, error) {
	var out []*entity.Subscription
	for _, s := range f.subs {
		if s.Channel == channel {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeWebhookEnqueuer struct {
	enqueued []*entity.Subscription
}

func (f *fakeWebhookEnqueuer) Enqueue(subscription *entity.Subscription, article *entity.Article) {
	f.enqueued = append(f.enqueued, subscription)
}

func testDispatchArticle(transportModes ...entity.TransportMode) *entity.Article {
	a := entity.NewArticle("art-1", "src-1", "https://example.com/a", "Title", "Body", time.Now())
	a.TransportModes = transportModes
	return a
}

func TestDispatcher_PublishCompleted_EnqueuesMatchingWebhookOnly(t *testing.T) {
	matching := &entity.Subscription{
		ID: "sub-match", Channel: entity.ChannelWebhook, Enabled: true,
		WebhookURL: "http://example.com/hook", WebhookSecret: "s",
		Filter: entity.Filter{TransportModes: []entity.TransportMode{entity.TransportOcean}},
	}
	nonMatching := &entity.Subscription{
		ID: "sub-nomatch", Channel: entity.ChannelWebhook, Enabled: true,
		WebhookURL: "http://example.com/hook", WebhookSecret: "s",
		Filter: entity.Filter{TransportModes: []entity.TransportMode{entity.TransportAir}},
	}
	disabled := &entity.Subscription{
		ID: "sub-disabled", Channel: entity.ChannelWebhook, Enabled: false,
		WebhookURL: "http://example.com/hook", WebhookSecret: "s",
	}

	subs := &fakeSubscriptionRepository{subs: []*entity.Subscription{matching, nonMatching, disabled}}
	enqueuer := &fakeWebhookEnqueuer{}
	d := New(NewRegistry(), subs, enqueuer)

	d.PublishCompleted(testDispatchArticle(entity.TransportOcean))

	require.Len(t, enqueuer.enqueued, 1)
	assert.Equal(t, "sub-match", enqueuer.enqueued[0].ID)
}

func TestDispatcher_PublishCompleted_NoSubscriptions(t *testing.T) {
	subs := &fakeSubscriptionRepository{}
	enqueuer := &fakeWebhookEnqueuer{}
	d := New(NewRegistry(), subs, enqueuer)

	d.PublishCompleted(testDispatchArticle())

	assert.Empty(t, enqueuer.enqueued)
}
