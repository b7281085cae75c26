package entity

import "time"

// WebhookDeliveryLog records one delivery attempt of an article to a
// webhook-channel subscription (spec.md §4.9).
type WebhookDeliveryLog struct {
	ID             int64
	SubscriptionID string
	ArticleID      string
	Attempt        int
	HTTPStatus     int
	LatencyMS      int64
	ErrorMessage   string
	DeliveredAt    time.Time
}

// Succeeded reports whether this attempt was accepted by the receiver.
func (l *WebhookDeliveryLog) Succeeded() bool {
	return l.HTTPStatus >= 200 && l.HTTPStatus < 300
}
