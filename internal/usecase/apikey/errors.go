// Package apikey provides use cases for minting and revoking API key
// credentials used by the HTTP authentication middleware.
package apikey

import "errors"

var (
	// ErrAPIKeyNotFound indicates the requested key does not exist.
	ErrAPIKeyNotFound = errors.New("API key not found")

	// ErrInvalidAPIKeyID indicates an empty or malformed key ID.
	ErrInvalidAPIKeyID = errors.New("invalid API key ID")
)
