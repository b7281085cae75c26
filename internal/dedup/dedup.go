// Package dedup implements the three-level deduplication cascade described
// in spec.md §4.3: an exact canonical-URL match, a title SimHash check
// within a small Hamming distance, and an LSH-narrowed MinHash Jaccard
// check over body content.
package dedup

import (
	"context"
	"fmt"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/fingerprint"
	"catchup-feed/internal/repository"
)

// MaxTitleHammingDistance is the level-2 cascade threshold.
const MaxTitleHammingDistance = 3

// MinContentJaccard is the level-3 cascade threshold.
const MinContentJaccard = 0.85

// TitleWindow bounds how far back the SimHash/MinHash levels look for a
// match — comparing against the entire historical corpus is both wasteful
// and semantically wrong, since two unrelated stories years apart can
// legitimately share phrasing.
const TitleWindow = 72 * time.Hour

// Checker runs the cascade against a repository-backed corpus and an
// in-memory LSH index kept warm for the content-similarity level.
type Checker struct {
	articles repository.ArticleRepository
	lsh      *fingerprint.LSHIndex
}

// NewChecker builds a Checker. lshIndex should be shared with whatever
// component inserts newly accepted articles (the collection scheduler),
// so that candidates found here reflect the live corpus.
func NewChecker(articles repository.ArticleRepository, lshIndex *fingerprint.LSHIndex) *Checker {
	return &Checker{articles: articles, lsh: lshIndex}
}

// Check runs all three cascade levels against candidate, which must already
// have its URL canonicalized and its fingerprints computed. It returns nil
// if candidate is not a duplicate of anything in the recent corpus, or an
// *entity.DuplicateError identifying the match otherwise.
func (c *Checker) Check(ctx context.Context, candidate *entity.Article) error {
	if err := c.checkURL(ctx, candidate); err != nil {
		return err
	}
	if err := c.checkTitleSimHash(ctx, candidate); err != nil {
		return err
	}
	return c.checkContentMinHash(ctx, candidate)
}

func (c *Checker) checkURL(ctx context.Context, candidate *entity.Article) error {
	existing, err := c.articles.GetByURL(ctx, candidate.URL)
	if err != nil {
		return fmt.Errorf("dedup: url lookup: %w", err)
	}
	if existing != nil {
		return &entity.DuplicateError{ExistingArticleID: existing.ID, Reason: entity.DedupReasonURLExact}
	}
	return nil
}

func (c *Checker) checkTitleSimHash(ctx context.Context, candidate *entity.Article) error {
	since := candidate.FetchedAt.Add(-TitleWindow)
	matches, err := c.articles.FindBySimHashWithin(ctx, candidate.TitleSimHash, MaxTitleHammingDistance, since)
	if err != nil {
		return fmt.Errorf("dedup: simhash lookup: %w", err)
	}
	if len(matches) > 0 {
		return &entity.DuplicateError{ExistingArticleID: matches[0].ID, Reason: entity.DedupReasonTitleSimHash}
	}
	return nil
}

func (c *Checker) checkContentMinHash(ctx context.Context, candidate *entity.Article) error {
	if c.lsh == nil {
		return nil
	}
	for _, id := range c.lsh.Candidates(candidate.ContentMinHash) {
		if id == candidate.ID {
			continue
		}
		existing, err := c.articles.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("dedup: candidate lookup: %w", err)
		}
		if existing == nil {
			continue
		}
		if fingerprint.EstimateJaccard(candidate.ContentMinHash, existing.ContentMinHash) >= MinContentJaccard {
			return &entity.DuplicateError{ExistingArticleID: existing.ID, Reason: entity.DedupReasonContentMinHash}
		}
	}
	return nil
}

// Index adds an accepted article's content fingerprint to the LSH index so
// future candidates can be compared against it.
func (c *Checker) Index(articleID string, sig [fingerprint.MinHashSize]uint64) {
	if c.lsh != nil {
		c.lsh.Insert(articleID, sig)
	}
}
