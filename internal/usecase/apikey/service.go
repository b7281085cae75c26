package apikey

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"

	"github.com/google/uuid"
)

// CreateInput describes a new API key.
type CreateInput struct {
	Name string
	Role entity.APIKeyRole
}

// CreateResult carries the one-time plaintext key alongside the stored
// record. The plaintext is never persisted or logged past this return.
type CreateResult struct {
	Key    *entity.APIKey
	RawKey string
}

// Service mints and manages API key credentials.
type Service struct {
	Repo repository.APIKeyRepository
}

// NewService builds a Service.
func NewService(repo repository.APIKeyRepository) *Service {
	return &Service{Repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*entity.APIKey, error) {
	return s.Repo.List(ctx)
}

// Create mints a new random key, stores its SHA-256 digest, and returns the
// plaintext exactly once.
func (s *Service) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	raw, err := generateKey()
	if err != nil {
		return CreateResult{}, fmt.Errorf("generating API key: %w", err)
	}

	key := &entity.APIKey{
		ID:      uuid.NewString(),
		Name:    in.Name,
		KeyHash: entity.HashAPIKey(raw),
		Role:    in.Role,
		Enabled: true,
	}
	if err := key.Validate(); err != nil {
		return CreateResult{}, err
	}
	if err := s.Repo.Create(ctx, key); err != nil {
		return CreateResult{}, err
	}
	return CreateResult{Key: key, RawKey: raw}, nil
}

// Revoke disables a key without deleting its audit trail.
func (s *Service) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidAPIKeyID
	}
	keys, err := s.Repo.List(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if k.ID == id {
			k.Enabled = false
			return s.Repo.Update(ctx, k)
		}
	}
	return ErrAPIKeyNotFound
}

// generateKey returns a random 32-byte key hex-encoded, prefixed so leaked
// keys are recognizable in logs and secret scanners.
func generateKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "cfk_" + hex.EncodeToString(buf), nil
}
