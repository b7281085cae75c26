// Package adapter implements the four adapter shapes that pull raw content
// from heterogeneous publishers: Feed (RSS/Atom), API (generic JSON/XML
// REST), Scraper (CSS-selector-driven HTML), and Universal (zero-config
// best-effort extraction). Every adapter produces the same RawArticle
// contract so the collection scheduler can normalize, fingerprint, and
// dedup them identically regardless of origin (spec.md §4.1).
package adapter

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
)

// FetchDeadline bounds a single adapter invocation, per spec.md §4.1/§4.6.
const FetchDeadline = 60 * time.Second

// RawArticle is the common output shape every adapter produces before
// normalization, fingerprinting, and dedup (spec.md §4.1).
type RawArticle struct {
	Title         string
	URL           string
	BodyHTML      string // may be empty if only a summary/description is available
	BodyText      string // pre-extracted plain text, when the source gives it
	PublishedAt   time.Time
	Author        string
	ExtraMetadata map[string]string
}

// Adapter pulls the current item set from a single Source.
type Adapter interface {
	Fetch(ctx context.Context, source *entity.Source) ([]RawArticle, error)
}

// WithDeadline wraps ctx with the fixed per-fetch hard deadline.
func WithDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, FetchDeadline)
}
