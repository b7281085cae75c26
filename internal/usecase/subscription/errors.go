// Package subscription provides use cases for managing delivery
// subscriptions: persistent filter + channel pairs that drive webhook
// fan-out and live push connections.
package subscription

import "errors"

var (
	// ErrSubscriptionNotFound indicates the requested subscription does not exist.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrInvalidSubscriptionID indicates an empty or malformed subscription ID.
	ErrInvalidSubscriptionID = errors.New("invalid subscription ID")
)
