package enrichment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseExtraction implements spec.md §4.7 step 4's tolerant-JSON contract:
// leading/trailing whitespace and a single fenced code block wrapper are
// stripped; anything else surrounding the JSON object is prose and is
// rejected rather than unwrapped. This is deliberately a narrow allow-list,
// not a general markdown-stripping pass. LLMProvider implementations call
// this on the raw model response before handing the result to the engine.
func ParseExtraction(raw string) (*ExtractionResult, error) {
	s := stripFence(strings.TrimSpace(raw))

	var result ExtractionResult
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return nil, fmt.Errorf("enrichment: response is not strict JSON: %w", err)
	}
	return &result, nil
}

// stripFence removes a leading "```json" or "```" fence and a trailing
// "```" fence, if present. Any other surrounding text is left untouched so
// the subsequent json.Unmarshal rejects it.
func stripFence(s string) string {
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
