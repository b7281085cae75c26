package entity

import "time"

// SourceCandidate is discovery output — a not-yet-approved potential source.
type SourceCandidate struct {
	CandidateID string
	URL         string
	FeedURL     string
	Kind        SourceKind

	DiscoveryMethod string // "search" | "custom_search" | "seed_crawl"
	DiscoveryQuery  string

	Status CandidateStatus

	QualityScore   float64
	RelevanceScore float64
	CombinedScore  float64

	SamplePreviews   []ArticlePreview
	ValidationDetail ValidationDetail

	AutoApproved bool

	CreatedAt   time.Time
	ValidatedAt *time.Time
	DecidedAt   *time.Time
}

// ArticlePreview is a lightweight sample used during validation.
type ArticlePreview struct {
	Title       string
	URL         string
	PublishedAt time.Time
	BodyLength  int
}

// ValidationDetail records the per-check outcome of the discovery validator
// (spec.md §4.10).
type ValidationDetail struct {
	Reachable         bool
	FeedFound         bool
	ArticlesFetched   int
	TitlesNonEmpty    bool
	BodiesLongEnough  bool
	PublishedAtFilled bool
	URLsCanonical     bool
	KeywordHits       map[string]int // keyword -> weighted hit count
}

// CombinedScore computes 0.4*quality + 0.6*relevance per spec.md §4.10.
func CombinedScore(quality, relevance float64) float64 {
	return 0.4*quality + 0.6*relevance
}

// AutoApprovalThreshold is the combined-score cutoff for auto-promotion.
const AutoApprovalThreshold = 75.0
