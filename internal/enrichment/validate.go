package enrichment

import (
	"fmt"
	"strings"

	"catchup-feed/internal/domain/entity"
)

// validate checks field presence and enum membership (spec.md §4.7 step
// 4), normalizing set-valued fields to lowercased, de-duplicated values in
// place. It returns an error describing the first violation found.
func validate(r *ExtractionResult) error {
	if strings.TrimSpace(r.SummaryEN) == "" {
		return fmt.Errorf("enrichment: summary_en is required")
	}
	if strings.TrimSpace(r.SummaryZH) == "" {
		return fmt.Errorf("enrichment: summary_zh is required")
	}

	sentiment := entity.Sentiment(strings.ToLower(strings.TrimSpace(r.Sentiment)))
	if !sentiment.Valid() {
		return fmt.Errorf("enrichment: invalid sentiment %q", r.Sentiment)
	}
	r.Sentiment = string(sentiment)

	urgency := entity.Urgency(strings.ToLower(strings.TrimSpace(r.Urgency)))
	if !urgency.Valid() {
		return fmt.Errorf("enrichment: invalid urgency %q", r.Urgency)
	}
	r.Urgency = string(urgency)

	if r.MarketImpact != "" {
		impact := entity.MarketImpact(strings.ToLower(strings.TrimSpace(r.MarketImpact)))
		if !impact.Valid() {
			return fmt.Errorf("enrichment: invalid market_impact %q", r.MarketImpact)
		}
		r.MarketImpact = string(impact)
	}

	modes, err := normalizeTransportModes(r.TransportModes)
	if err != nil {
		return err
	}
	r.TransportModes = modes

	r.SecondaryTopics = normalizeStringSet(r.SecondaryTopics)
	r.Regions = normalizeStringSet(r.Regions)
	r.PrimaryTopic = strings.ToLower(strings.TrimSpace(r.PrimaryTopic))
	return nil
}

func normalizeTransportModes(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, v := range raw {
		m := entity.TransportMode(strings.ToLower(strings.TrimSpace(v)))
		if m == "" {
			continue
		}
		if !m.Valid() {
			return nil, fmt.Errorf("enrichment: invalid transport_mode %q", v)
		}
		if seen[string(m)] {
			continue
		}
		seen[string(m)] = true
		out = append(out, string(m))
	}
	return out, nil
}

func normalizeStringSet(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, v := range raw {
		norm := strings.ToLower(strings.TrimSpace(v))
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}
