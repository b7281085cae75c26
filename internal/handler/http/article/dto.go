// Package article provides HTTP handlers for read and search access to
// enriched articles. Articles themselves are produced by the ingestion
// pipeline; this package never creates, updates, or deletes one.
package article

import (
	"time"

	"catchup-feed/internal/domain/entity"
)

// KeyMetricDTO is a single structured figure extracted by enrichment.
type KeyMetricDTO struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// DTO represents the JSON structure for article data transfer.
type DTO struct {
	ID           string    `json:"id" example:"a1b2c3d4"`
	SourceID     string    `json:"source_id" example:"reuters-freight"`
	Title        string    `json:"title" example:"Red Sea diversions push freight rates higher"`
	URL          string    `json:"url" example:"https://example.com/article/1"`
	Language     string    `json:"language" example:"en"`
	PublishedAt  time.Time `json:"published_at" example:"2026-07-20T10:00:00Z"`
	FetchedAt    time.Time `json:"fetched_at" example:"2026-07-20T10:05:00Z"`

	SummaryEN       string            `json:"summary_en,omitempty"`
	SummaryZH       string            `json:"summary_zh,omitempty"`
	TransportModes  []string          `json:"transport_modes,omitempty"`
	PrimaryTopic    string            `json:"primary_topic,omitempty"`
	SecondaryTopics []string          `json:"secondary_topics,omitempty"`
	ContentType     string            `json:"content_type,omitempty"`
	Regions         []string          `json:"regions,omitempty"`
	Entities        map[string][]string `json:"entities,omitempty"`
	Sentiment       string            `json:"sentiment,omitempty"`
	MarketImpact    string            `json:"market_impact,omitempty"`
	Urgency         string            `json:"urgency,omitempty"`
	KeyMetrics      []KeyMetricDTO    `json:"key_metrics,omitempty"`

	ProcessingStatus string `json:"processing_status"`
}

// toDTO projects an entity.Article onto its wire representation. The
// embedding vector is never serialized.
func toDTO(a *entity.Article) DTO {
	modes := make([]string, 0, len(a.TransportModes))
	for _, m := range a.TransportModes {
		modes = append(modes, string(m))
	}

	metrics := make([]KeyMetricDTO, 0, len(a.KeyMetrics))
	for _, m := range a.KeyMetrics {
		metrics = append(metrics, KeyMetricDTO{Type: m.Type, Value: m.Value})
	}

	return DTO{
		ID:               a.ID,
		SourceID:         a.SourceID,
		Title:            a.Title,
		URL:              a.URL,
		Language:         a.Language,
		PublishedAt:      a.PublishedAt,
		FetchedAt:        a.FetchedAt,
		SummaryEN:        a.SummaryEN,
		SummaryZH:        a.SummaryZH,
		TransportModes:   modes,
		PrimaryTopic:     a.PrimaryTopic,
		SecondaryTopics:  a.SecondaryTopics,
		ContentType:      a.ContentType,
		Regions:          a.Regions,
		Entities:         a.Entities,
		Sentiment:        string(a.Sentiment),
		MarketImpact:     string(a.MarketImpact),
		Urgency:          string(a.Urgency),
		KeyMetrics:       metrics,
		ProcessingStatus: string(a.ProcessingStatus),
	}
}

// SimilarityDTO pairs a DTO with its cosine-similarity score.
type SimilarityDTO struct {
	Article    DTO     `json:"article"`
	Similarity float64 `json:"similarity"`
}
