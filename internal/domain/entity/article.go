// Package entity defines the core domain entities and validation logic for the
// news aggregation pipeline: articles, sources, fetch logs, discovery
// candidates, subscriptions, webhook delivery logs, and API keys.
package entity

import "time"

// EmbeddingDimension is the fixed width of the article embedding vector
// (see spec.md §3, §4.5 — ANN index parameters assume this exact width).
const EmbeddingDimension = 1024

// Article is one logical news item surviving the deduplication cascade.
type Article struct {
	ID   string // server-assigned opaque UUID
	URL  string // canonicalized, globally unique
	Title string
	BodyText     string
	BodyMarkdown string
	Language     string // detected language, e.g. "en", "zh"

	SourceID    string
	PublishedAt time.Time // source-declared
	FetchedAt   time.Time // ingest time

	TitleSimHash    uint64
	ContentMinHash  [128]uint64

	// Enrichment fields. Nil/zero until ProcessingStatus == completed.
	SummaryEN       string
	SummaryZH       string
	TransportModes  []TransportMode
	PrimaryTopic    string
	SecondaryTopics []string
	ContentType     string
	Regions         []string
	Entities        map[string][]string
	Sentiment       Sentiment
	MarketImpact    MarketImpact
	Urgency         Urgency
	KeyMetrics      []KeyMetric
	Embedding       []float32 // length EmbeddingDimension when completed

	ProcessingStatus ProcessingStatus
	LLMProcessed     bool
	EnrichmentError  string
}

// KeyMetric is a single structured figure extracted by enrichment
// (e.g. {"freight_rate_usd_teu", "4120"}).
type KeyMetric struct {
	Type  string
	Value string
}

// NewArticle builds an Article in its initial (pre-dedup, pre-enrichment)
// state from adapter output.
func NewArticle(id, sourceID, url, title, bodyText string, publishedAt time.Time) *Article {
	return &Article{
		ID:               id,
		SourceID:         sourceID,
		URL:              url,
		Title:            title,
		BodyText:         bodyText,
		PublishedAt:      publishedAt,
		FetchedAt:        time.Now(),
		ProcessingStatus: ProcessingPending,
	}
}

// Validate checks required fields per spec.md §3 invariants (i)/(ii).
func (a *Article) Validate() error {
	if a.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if a.URL == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}
	if a.BodyText == "" {
		return &ValidationError{Field: "body_text", Message: "body_text is required after successful fetch"}
	}
	return nil
}

// IsComplete reports whether the article has passed enrichment validation
// (invariant iv: a completed article has non-null embedding and sentiment).
func (a *Article) IsComplete() bool {
	return a.ProcessingStatus == ProcessingCompleted &&
		len(a.Embedding) == EmbeddingDimension &&
		a.Sentiment != ""
}
