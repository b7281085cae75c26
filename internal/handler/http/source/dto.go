// Package source provides HTTP handlers for read access to configured
// sources and their fetch history. Sources are created by config seeding
// or discovery promotion, never through this API (spec.md's Source
// lifecycle note).
package source

import (
	"time"

	"catchup-feed/internal/domain/entity"
)

// DTO represents the JSON structure for source data transfer.
type DTO struct {
	SourceID      string     `json:"source_id"`
	Name          string     `json:"name"`
	Kind          string     `json:"kind"`
	URL           string     `json:"url"`
	Language      string     `json:"language,omitempty"`
	IntervalMin   int        `json:"interval_min"`
	Priority      int        `json:"priority"`
	Enabled       bool       `json:"enabled"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
	Health        string     `json:"health"`
}

func toDTO(s *entity.Source) DTO {
	return DTO{
		SourceID:      s.SourceID,
		Name:          s.Name,
		Kind:          string(s.Kind),
		URL:           s.URL,
		Language:      s.Language,
		IntervalMin:   s.IntervalMin,
		Priority:      s.Priority,
		Enabled:       s.Enabled,
		LastFetchedAt: s.LastFetchedAt,
		Health:        string(s.Health),
	}
}

// FetchLogDTO represents the JSON structure for a single fetch attempt.
type FetchLogDTO struct {
	SourceID      string    `json:"source_id"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	Status        string    `json:"status"`
	ArticlesFound int       `json:"articles_found"`
	ArticlesNew   int       `json:"articles_new"`
	ArticlesDedup int       `json:"articles_dedup"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
}

func toFetchLogDTO(l entity.FetchLog) FetchLogDTO {
	return FetchLogDTO{
		SourceID:      l.SourceID,
		StartedAt:     l.StartedAt,
		CompletedAt:   l.CompletedAt,
		Status:        string(l.Status),
		ArticlesFound: l.ArticlesFound,
		ArticlesNew:   l.ArticlesNew,
		ArticlesDedup: l.ArticlesDedup,
		ErrorMessage:  l.ErrorMessage,
		DurationMS:    l.DurationMS,
	}
}
