package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catchup-feed/internal/domain/entity"
)

func TestQualityScore_ZeroArticlesFetched(t *testing.T) {
	score := qualityScore(&entity.ValidationDetail{ArticlesFetched: 0})
	assert.Zero(t, score)
}

func TestQualityScore_AllChecksPass(t *testing.T) {
	score := qualityScore(&entity.ValidationDetail{
		ArticlesFetched:   5,
		TitlesNonEmpty:    true,
		BodiesLongEnough:  true,
		PublishedAtFilled: true,
		URLsCanonical:     true,
	})
	assert.Equal(t, 100.0, score)
}

func TestQualityScore_ArticlesFetchedIsADiscreteThreshold(t *testing.T) {
	atThreshold := qualityScore(&entity.ValidationDetail{ArticlesFetched: minArticlesForQuality})
	belowThreshold := qualityScore(&entity.ValidationDetail{ArticlesFetched: minArticlesForQuality - 1})
	aboveThreshold := qualityScore(&entity.ValidationDetail{ArticlesFetched: minArticlesForQuality + 5})
	assert.Greater(t, atThreshold, belowThreshold)
	assert.Equal(t, atThreshold, aboveThreshold, "fetching more than the threshold should not score higher")
}

func TestRelevanceScore_NoSamples(t *testing.T) {
	score, hits := relevanceScore(nil)
	assert.Zero(t, score)
	assert.Empty(t, hits)
}

func TestRelevanceScore_NoKeywordHits(t *testing.T) {
	score, hits := relevanceScore([]sampleText{{Title: "unrelated topic", Body: "nothing to see here"}})
	assert.Zero(t, score)
	assert.Empty(t, hits)
}

func TestRelevanceScore_SumsWeightedHits(t *testing.T) {
	score, hits := relevanceScore([]sampleText{
		{Title: "Container shipping rates surge", Body: "Ocean freight and port congestion worsen as supply chain strains continue."},
	})
	// container shipping(3) + ocean freight(3) + port congestion(3) + supply chain(2)
	assert.Equal(t, 11.0, score)
	assert.Equal(t, 1, hits["container shipping"])
	assert.Equal(t, 1, hits["ocean freight"])
	assert.Equal(t, 1, hits["port congestion"])
	assert.Equal(t, 1, hits["supply chain"])
}

func TestRelevanceScore_BilingualTermsWeighEqually(t *testing.T) {
	en, _ := relevanceScore([]sampleText{{Title: "container shipping", Body: ""}})
	zh, _ := relevanceScore([]sampleText{{Title: "集装箱运输", Body: ""}})
	assert.Equal(t, en, zh)
}

func TestRelevanceScore_ScoreNeverExceeds100(t *testing.T) {
	var samples []sampleText
	for i := 0; i < 20; i++ {
		samples = append(samples, sampleText{Title: "container shipping ocean freight port congestion", Body: "supply chain logistics air cargo rail freight"})
	}
	score, _ := relevanceScore(samples)
	assert.LessOrEqual(t, score, 100.0)
}
