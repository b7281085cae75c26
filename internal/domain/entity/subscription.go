package entity

import "fmt"

// Subscription is a persistent filter + delivery target.
type Subscription struct {
	ID      string
	Filter  Filter
	Channel Channel

	// Webhook channel config. Schema-complete only when Channel == ChannelWebhook
	// (invariant vi).
	WebhookURL    string
	WebhookSecret string

	Frequency Frequency
	Enabled   bool
}

// Filter is the predicate shape shared by Subscription and live push
// connections (spec.md §4.8).
type Filter struct {
	SourceIDs      []string
	TransportModes []TransportMode
	Topics         []string
	Regions        []string
	Languages      []string
	UrgencyMin     Urgency
}

// Validate checks schema-completeness of the channel config (invariant vi).
func (s *Subscription) Validate() error {
	if !s.Channel.Valid() {
		return fmt.Errorf("invalid channel: %s", s.Channel)
	}
	if s.Channel == ChannelWebhook {
		if s.WebhookURL == "" {
			return &ValidationError{Field: "webhook_url", Message: "required for webhook channel"}
		}
		if s.WebhookSecret == "" {
			return &ValidationError{Field: "webhook_secret", Message: "required for webhook channel"}
		}
	}
	if s.Frequency != "" && !s.Frequency.Valid() {
		return fmt.Errorf("invalid frequency: %s", s.Frequency)
	}
	return nil
}

// Matches implements the predicate semantics of spec.md §4.8: each non-empty
// field is an OR over its values, AND-ed with the other fields.
func (f Filter) Matches(a *Article) bool {
	if len(f.SourceIDs) > 0 && !containsString(f.SourceIDs, a.SourceID) {
		return false
	}
	if len(f.TransportModes) > 0 && !anyTransportMode(f.TransportModes, a.TransportModes) {
		return false
	}
	if len(f.Topics) > 0 && !matchesTopics(f.Topics, a) {
		return false
	}
	if len(f.Regions) > 0 && !anyString(f.Regions, a.Regions) {
		return false
	}
	if len(f.Languages) > 0 && !containsString(f.Languages, a.Language) {
		return false
	}
	if f.UrgencyMin != "" && !a.Urgency.AtLeast(f.UrgencyMin) {
		return false
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func anyString(list, candidates []string) bool {
	for _, c := range candidates {
		if containsString(list, c) {
			return true
		}
	}
	return false
}

func anyTransportMode(list []TransportMode, candidates []TransportMode) bool {
	for _, c := range candidates {
		for _, item := range list {
			if item == c {
				return true
			}
		}
	}
	return false
}

func matchesTopics(topics []string, a *Article) bool {
	if containsString(topics, a.PrimaryTopic) {
		return true
	}
	return anyString(topics, a.SecondaryTopics)
}
