// Package subscription exposes CRUD HTTP handlers for delivery
// subscriptions. Every route requires at least the "subscriber" API key
// role; webhook secrets are accepted on write but never echoed back.
package subscription

import "catchup-feed/internal/domain/entity"

// FilterDTO mirrors entity.Filter.
type FilterDTO struct {
	SourceIDs      []string `json:"source_ids,omitempty"`
	TransportModes []string `json:"transport_modes,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	Regions        []string `json:"regions,omitempty"`
	Languages      []string `json:"languages,omitempty"`
	UrgencyMin     string   `json:"urgency_min,omitempty"`
}

// DTO is the wire representation of a subscription. WebhookSecret is
// included on create/update responses only so the caller can confirm what
// was stored, never on list/get.
type DTO struct {
	ID         string    `json:"id"`
	Filter     FilterDTO `json:"filter"`
	Channel    string    `json:"channel"`
	WebhookURL string    `json:"webhook_url,omitempty"`
	Frequency  string    `json:"frequency,omitempty"`
	Enabled    bool      `json:"enabled"`
}

func toFilterDTO(f entity.Filter) FilterDTO {
	modes := make([]string, 0, len(f.TransportModes))
	for _, m := range f.TransportModes {
		modes = append(modes, string(m))
	}
	return FilterDTO{
		SourceIDs:      f.SourceIDs,
		TransportModes: modes,
		Topics:         f.Topics,
		Regions:        f.Regions,
		Languages:      f.Languages,
		UrgencyMin:     string(f.UrgencyMin),
	}
}

func toFilter(d FilterDTO) entity.Filter {
	modes := make([]entity.TransportMode, 0, len(d.TransportModes))
	for _, m := range d.TransportModes {
		modes = append(modes, entity.TransportMode(m))
	}
	return entity.Filter{
		SourceIDs:      d.SourceIDs,
		TransportModes: modes,
		Topics:         d.Topics,
		Regions:        d.Regions,
		Languages:      d.Languages,
		UrgencyMin:     entity.Urgency(d.UrgencyMin),
	}
}

func toDTO(s *entity.Subscription) DTO {
	return DTO{
		ID:         s.ID,
		Filter:     toFilterDTO(s.Filter),
		Channel:    string(s.Channel),
		WebhookURL: s.WebhookURL,
		Frequency:  string(s.Frequency),
		Enabled:    s.Enabled,
	}
}
