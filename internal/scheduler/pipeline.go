package scheduler

import (
	"time"

	"catchup-feed/internal/adapter"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/fingerprint"
	"catchup-feed/internal/textnorm"

	"github.com/google/uuid"
)

// buildCandidate turns one adapter-produced RawArticle into a fully
// normalized, fingerprinted Article ready for the dedup cascade. It does
// not touch the repository; callers decide what happens to a rejected or
// accepted candidate.
func buildCandidate(raw adapter.RawArticle, source *entity.Source) (*entity.Article, error) {
	canonicalURL, err := entity.CanonicalizeURL(raw.URL)
	if err != nil {
		return nil, err
	}

	body := raw.BodyText
	if body == "" {
		body = textnorm.StripHTML(raw.BodyHTML)
	}
	body = textnorm.NormalizeBody(body)
	title := textnorm.NormalizeTitle(raw.Title, source.Name)

	publishedAt := raw.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	art := entity.NewArticle(uuid.NewString(), source.SourceID, canonicalURL, title, body, publishedAt)
	art.TitleSimHash = fingerprint.SimHash64(title)
	art.ContentMinHash = fingerprint.MinHash128(body)
	return art, nil
}
