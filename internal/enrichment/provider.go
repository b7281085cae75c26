// Package enrichment implements the LLM extraction + embedding pipeline
// described in spec.md §4.7: a bounded worker pool that takes each article
// through pending -> processing -> completed|failed, calling out to an
// OpenAI-compatible chat-completions endpoint for structured extraction and
// a matching embedding endpoint for the 1024-d vector.
package enrichment

import (
	"context"

	"catchup-feed/internal/domain/entity"
)

// ExtractionResult is the structured object an LLMProvider must produce
// for one article, matching the Enrichment fields of spec.md §3.
type ExtractionResult struct {
	SummaryEN       string               `json:"summary_en"`
	SummaryZH       string               `json:"summary_zh"`
	TransportModes  []string             `json:"transport_modes"`
	PrimaryTopic    string               `json:"primary_topic"`
	SecondaryTopics []string             `json:"secondary_topics"`
	ContentType     string               `json:"content_type"`
	Regions         []string             `json:"regions"`
	Entities        map[string][]string  `json:"entities"`
	Sentiment       string               `json:"sentiment"`
	MarketImpact    string               `json:"market_impact"`
	Urgency         string               `json:"urgency"`
	KeyMetrics      []entity.KeyMetric   `json:"key_metrics"`
}

// LLMProvider abstracts the two outbound calls the enrichment pipeline
// makes per article: structured extraction and embedding. Concrete
// implementations live under enrichment/llm.
type LLMProvider interface {
	// Extract calls the chat-completions endpoint with the versioned
	// prompt template and returns the parsed, schema-validated result.
	Extract(ctx context.Context, title, body string) (*ExtractionResult, error)

	// Embed calls the embedding endpoint and returns a vector of exactly
	// entity.EmbeddingDimension floats.
	Embed(ctx context.Context, text string) ([]float32, error)
}
