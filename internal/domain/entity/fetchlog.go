package entity

import "time"

// FetchLog is an append-only record of one scheduled fetch attempt
// (spec.md §3, invariant vii).
type FetchLog struct {
	ID            int64
	SourceID      string
	StartedAt     time.Time
	CompletedAt   time.Time
	Status        FetchStatus
	ArticlesFound int
	ArticlesNew   int
	ArticlesDedup int
	ErrorMessage  string
	DurationMS    int64
}
