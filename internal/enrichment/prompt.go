package enrichment

import "fmt"

// PromptVersion identifies the extraction prompt template in use. Bump
// this whenever the template's field set or instructions change, so
// historical EnrichmentError values can be correlated to the prompt that
// produced them.
const PromptVersion = "enrichment-prompt-v1"

// MaxBodyChars is the default truncation length for the body passed into
// the prompt (spec.md §4.7 step 2).
const MaxBodyChars = 8000

// BuildExtractionPrompt renders the versioned extraction prompt for one
// article's title and body.
func BuildExtractionPrompt(title, body string) string {
	truncated := body
	if len(truncated) > MaxBodyChars {
		truncated = truncated[:MaxBodyChars]
	}

	return fmt.Sprintf(`You are a news analyst for a logistics and trade intelligence feed.
Read the article below and respond with a single strict JSON object, no
prose before or after it. Do not wrap it in markdown unless explicitly
asked to.

Required fields:
- summary_en: string, English summary, 2-4 sentences
- summary_zh: string, Chinese summary, 2-4 sentences
- transport_modes: array of zero or more of "ocean", "air", "rail", "road"
- primary_topic: string, a short topic label
- secondary_topics: array of additional short topic labels
- content_type: string, e.g. "news", "analysis", "press_release"
- regions: array of region/country names mentioned
- entities: object mapping a category name to an array of entity names
- sentiment: one of "positive", "neutral", "negative"
- market_impact: one of "high", "medium", "low"
- urgency: one of "high", "medium", "low"
- key_metrics: array of {"type": string, "value": string}

Title: %s

Body:
%s`, title, truncated)
}
