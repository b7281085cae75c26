// Package discovery exposes HTTP control of the discovery loop: start,
// stop, status, manual scan/validate triggers, candidate review, and an
// ad hoc probe. All routes require the "admin" API key role.
package discovery

import (
	"time"

	"catchup-feed/internal/discovery"
	"catchup-feed/internal/domain/entity"
)

// StatusDTO mirrors discovery.Status.
type StatusDTO struct {
	Running      bool      `json:"running"`
	NextScan     time.Time `json:"next_scan,omitempty"`
	NextValidate time.Time `json:"next_validate,omitempty"`
}

func toStatusDTO(st discovery.Status) StatusDTO {
	return StatusDTO{Running: st.Running, NextScan: st.NextScan, NextValidate: st.NextValidate}
}

// CandidateDTO is the wire representation of a discovery candidate.
type CandidateDTO struct {
	CandidateID     string    `json:"candidate_id"`
	URL             string    `json:"url"`
	FeedURL         string    `json:"feed_url,omitempty"`
	Kind            string    `json:"kind,omitempty"`
	DiscoveryMethod string    `json:"discovery_method"`
	Status          string    `json:"status"`
	QualityScore    float64   `json:"quality_score"`
	RelevanceScore  float64   `json:"relevance_score"`
	CombinedScore   float64   `json:"combined_score"`
	AutoApproved    bool      `json:"auto_approved"`
	CreatedAt       time.Time `json:"created_at"`
}

func toCandidateDTO(c *entity.SourceCandidate) CandidateDTO {
	return CandidateDTO{
		CandidateID:     c.CandidateID,
		URL:             c.URL,
		FeedURL:         c.FeedURL,
		Kind:            string(c.Kind),
		DiscoveryMethod: c.DiscoveryMethod,
		Status:          string(c.Status),
		QualityScore:    c.QualityScore,
		RelevanceScore:  c.RelevanceScore,
		CombinedScore:   c.CombinedScore,
		AutoApproved:    c.AutoApproved,
		CreatedAt:       c.CreatedAt,
	}
}

// ProbeDTO mirrors discovery.ProbeResult.
type ProbeDTO struct {
	Reachable       bool   `json:"reachable"`
	FeedFound       bool   `json:"feed_found"`
	FeedURL         string `json:"feed_url,omitempty"`
	ArticlesFetched int    `json:"articles_fetched"`
}

func toProbeDTO(r discovery.ProbeResult) ProbeDTO {
	return ProbeDTO{Reachable: r.Reachable, FeedFound: r.FeedFound, FeedURL: r.FeedURL, ArticlesFetched: r.ArticlesFetched}
}
