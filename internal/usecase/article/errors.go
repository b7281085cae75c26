// Package article provides use cases for querying article entities:
// listing, full-text search, and semantic (embedding) search over the
// output of the ingestion pipeline. Articles are created and enriched by
// the pipeline itself, not through this package.
package article

import "errors"

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that the requested article was not found.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates that the provided article ID is empty.
	ErrInvalidArticleID = errors.New("invalid article ID")

	// ErrNotEnriched indicates that an operation requiring a completed
	// article (non-empty embedding) was attempted on one still pending
	// or in progress.
	ErrNotEnriched = errors.New("article has not completed enrichment")
)
