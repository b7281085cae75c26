package discovery

import (
	"strings"

	"catchup-feed/internal/domain/entity"
)

// sampleText is the in-memory trial-fetch content relevanceScore scores
// against the lexicon. It is not persisted; entity.ArticlePreview (which
// keeps only a body length) is what gets stored on the candidate.
type sampleText struct {
	Title string
	Body  string
}

// minArticlesForQuality is the discrete "enough samples fetched" test in
// the quality checklist (spec.md §4.10).
const minArticlesForQuality = 3

// qualityScore rates a candidate's trial-fetch result on a 0-100 scale
// per spec.md §4.10's validation checklist: reachability and feed
// presence are prerequisites (checked by the caller before this runs),
// so this only scores the shape of what was actually fetched.
func qualityScore(detail *entity.ValidationDetail) float64 {
	if detail.ArticlesFetched == 0 {
		return 0
	}

	var score float64

	if detail.TitlesNonEmpty {
		score += 25
	}
	if detail.BodiesLongEnough {
		score += 25
	}
	if detail.ArticlesFetched >= minArticlesForQuality {
		score += 20
	}
	if detail.PublishedAtFilled {
		score += 15
	}
	if detail.URLsCanonical {
		score += 15
	}
	return score
}

// relevanceScore rates how strongly the trial-fetch samples match the
// bilingual keyword lexicon, on a 0-100 scale. Each keyword hit in a
// sample's title or body contributes its configured weight; the raw sum
// is normalized to 100 by capping (spec.md §4.10).
func relevanceScore(samples []sampleText) (float64, map[string]int) {
	hits := make(map[string]int)
	if len(samples) == 0 {
		return 0, hits
	}

	var totalWeight int
	for _, sample := range samples {
		haystack := strings.ToLower(sample.Title + " " + sample.Body)
		for _, kw := range relevanceLexicon {
			if strings.Contains(haystack, strings.ToLower(kw.term)) {
				hits[kw.term]++
				totalWeight += kw.weight
			}
		}
	}

	score := float64(totalWeight)
	if score > 100 {
		score = 100
	}
	return score, hits
}
