// Package webhook delivers completed articles to subscription-registered
// HTTP endpoints (spec.md §4.9): HMAC-signed POST with bounded retries,
// every attempt recorded to a delivery log.
package webhook

import (
	"time"

	"catchup-feed/internal/domain/entity"
)

// EventType is the value sent in the X-Webhook-Event header.
const EventType = "article.new"

// ArticlePayload is the JSON body shape delivered to both webhook
// subscribers and live push connections. It excludes internal-only fields
// (the embedding vector, simhash/minhash fingerprints) that have no
// meaning to a subscriber.
type ArticlePayload struct {
	ID              string                 `json:"id"`
	SourceID        string                 `json:"source_id"`
	URL             string                 `json:"url"`
	Title           string                 `json:"title"`
	Language        string                 `json:"language"`
	PublishedAt     time.Time              `json:"published_at"`
	SummaryEN       string                 `json:"summary_en"`
	SummaryZH       string                 `json:"summary_zh"`
	TransportModes  []entity.TransportMode `json:"transport_modes"`
	PrimaryTopic    string                 `json:"primary_topic"`
	SecondaryTopics []string               `json:"secondary_topics"`
	ContentType     string                 `json:"content_type"`
	Regions         []string               `json:"regions"`
	Entities        map[string][]string    `json:"entities"`
	Sentiment       entity.Sentiment       `json:"sentiment"`
	MarketImpact    entity.MarketImpact    `json:"market_impact"`
	Urgency         entity.Urgency         `json:"urgency"`
	KeyMetrics      []entity.KeyMetric     `json:"key_metrics"`
}

// NewArticlePayload projects an Article onto its wire representation.
func NewArticlePayload(a *entity.Article) ArticlePayload {
	return ArticlePayload{
		ID:              a.ID,
		SourceID:        a.SourceID,
		URL:             a.URL,
		Title:           a.Title,
		Language:        a.Language,
		PublishedAt:     a.PublishedAt,
		SummaryEN:       a.SummaryEN,
		SummaryZH:       a.SummaryZH,
		TransportModes:  a.TransportModes,
		PrimaryTopic:    a.PrimaryTopic,
		SecondaryTopics: a.SecondaryTopics,
		ContentType:     a.ContentType,
		Regions:         a.Regions,
		Entities:        a.Entities,
		Sentiment:       a.Sentiment,
		MarketImpact:    a.MarketImpact,
		Urgency:         a.Urgency,
		KeyMetrics:      a.KeyMetrics,
	}
}

// Envelope is the top-level frame shape shared by webhook deliveries and
// WebSocket push frames: {"type": "...", "data": {...}}.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
