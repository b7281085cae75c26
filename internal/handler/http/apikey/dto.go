// Package apikey exposes admin-only CRUD handlers for API key
// credentials. Every route requires the "admin" role.
package apikey

import (
	"time"

	"catchup-feed/internal/domain/entity"
)

// DTO never includes the key hash or the plaintext secret.
type DTO struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	Enabled    bool       `json:"enabled"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func toDTO(k *entity.APIKey) DTO {
	return DTO{
		ID:         k.ID,
		Name:       k.Name,
		Role:       string(k.Role),
		Enabled:    k.Enabled,
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
	}
}

// CreatedDTO is returned exactly once, on creation, with the plaintext key.
type CreatedDTO struct {
	DTO
	Key string `json:"key"`
}
