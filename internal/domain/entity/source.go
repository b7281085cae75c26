package entity

import (
	"fmt"
	"time"
)

// Source is a configured or discovered content origin.
type Source struct {
	SourceID       string // opaque, stable identifier
	Name           string
	Kind           SourceKind
	URL            string
	Language       string // "en", "zh", or empty when undeclared
	IntervalMin    int    // fetch cadence in minutes
	Priority       int
	Enabled        bool
	FeedConfig     *FeedConfig
	APIConfig      *APIConfig
	ScraperConfig  *ScraperConfig
	LastFetchedAt  *time.Time
	Health         HealthStatus
}

// FeedConfig configures the Feed adapter. Currently empty beyond the
// Source's base URL — reserved for future per-feed overrides (custom
// user agent, alternate link-extraction rules).
type FeedConfig struct {
	UserAgent string `json:"user_agent,omitempty"`
}

// APIConfig configures the API adapter (spec.md §4.1).
type APIConfig struct {
	BaseURL    string     `json:"base_url"`
	AuthScheme AuthScheme `json:"auth_scheme"`
	AuthHeader string     `json:"auth_header,omitempty"` // header name for api_key_header
	AuthValue  string     `json:"auth_value,omitempty"`  // key or bearer token
	Pagination PaginationMode `json:"pagination"`
	MaxPages   int        `json:"max_pages,omitempty"`

	// Field mapping: JSON-pointer-like paths into the response body.
	ListPath        string `json:"list_path"`        // path to the array of items
	TitlePath       string `json:"title_path"`
	BodyPath        string `json:"body_path"`
	URLPath         string `json:"url_path"`
	PublishedAtPath string `json:"published_at_path,omitempty"`
}

// AuthScheme is the API adapter's authentication mechanism.
type AuthScheme string

const (
	AuthNone           AuthScheme = "none"
	AuthAPIKeyHeader   AuthScheme = "api_key_header"
	AuthBearer         AuthScheme = "bearer"
)

// PaginationMode is the API adapter's pagination strategy.
type PaginationMode string

const (
	PaginationNone       PaginationMode = "none"
	PaginationPageNumber PaginationMode = "page_number"
	PaginationOffset     PaginationMode = "offset"
	PaginationCursor     PaginationMode = "cursor"
)

// ScraperConfig configures the Scraper adapter's CSS selectors.
type ScraperConfig struct {
	ListSelector        string `json:"list_selector"`
	EntryTitleSelector   string `json:"entry_title_selector"`
	EntryLinkSelector    string `json:"entry_link_selector"`
	DetailTitleSelector  string `json:"detail_title_selector,omitempty"`
	DetailBodySelector   string `json:"detail_body_selector,omitempty"`
	DetailDateSelector   string `json:"detail_date_selector,omitempty"`
	DateFormat           string `json:"date_format,omitempty"`
	URLPrefix            string `json:"url_prefix,omitempty"`
}

// Validate checks that the source type is valid and that the matching
// parser configuration is present.
func (s *Source) Validate() error {
	if s.SourceID == "" {
		return &ValidationError{Field: "source_id", Message: "source_id is required"}
	}
	if s.Kind == "" {
		s.Kind = SourceKindUniversal
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("invalid source kind: %s", s.Kind)
	}
	switch s.Kind {
	case SourceKindAPI:
		if s.APIConfig == nil {
			return &ValidationError{Field: "api_config", Message: "api_config is required for api sources"}
		}
	case SourceKindScraper:
		if s.ScraperConfig == nil {
			return &ValidationError{Field: "scraper_config", Message: "scraper_config is required for scraper sources"}
		}
	}
	if s.IntervalMin <= 0 {
		return &ValidationError{Field: "fetch_interval_minutes", Message: "must be positive"}
	}
	return nil
}

// EvaluateHealth computes the 24h-window health status per spec.md §7:
// success rate >= 80% healthy, 50-80% degraded, <50% (or no successful
// fetch in 3x interval) failing.
func EvaluateHealth(logs []FetchLog, intervalMin int, now time.Time) HealthStatus {
	if len(logs) == 0 {
		return HealthDegraded
	}

	var successes, total int
	var lastSuccess time.Time
	for _, l := range logs {
		total++
		if l.Status == FetchSuccess {
			successes++
			if l.CompletedAt.After(lastSuccess) {
				lastSuccess = l.CompletedAt
			}
		}
	}

	if intervalMin > 0 && !lastSuccess.IsZero() {
		staleAfter := time.Duration(3*intervalMin) * time.Minute
		if now.Sub(lastSuccess) > staleAfter {
			return HealthFailing
		}
	}
	if lastSuccess.IsZero() {
		return HealthFailing
	}

	rate := float64(successes) / float64(total)
	switch {
	case rate >= 0.8:
		return HealthHealthy
	case rate >= 0.5:
		return HealthDegraded
	default:
		return HealthFailing
	}
}
