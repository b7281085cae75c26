package discovery

import (
	"context"
	"log/slog"
	"net/http"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"

	"github.com/google/uuid"
)

// ScanConfig supplies the optional custom-search credentials and seed URLs
// the scan phase's producers need.
type ScanConfig struct {
	CustomSearchAPIKey string
	CustomSearchCSEID  string
	SeedURLs           []string
}

// leadProducer proposes candidate leads for one scan cycle.
type leadProducer interface {
	Produce(ctx context.Context) []candidateLead
}

// Scanner runs the scan phase: it asks every configured producer for
// leads, deduplicates against existing candidates and sources, and
// persists one entity.SourceCandidate per previously-unseen URL.
type Scanner struct {
	candidates repository.SourceCandidateRepository
	producers  []leadProducer
}

// NewScanner builds a Scanner. The custom-search producer is included
// unconditionally but no-ops (spec.md's "optional custom-search API")
// when cfg.CustomSearchAPIKey/CSEID are empty.
func NewScanner(client *http.Client, candidates repository.SourceCandidateRepository, cfg ScanConfig) *Scanner {
	return &Scanner{
		candidates: candidates,
		producers: []leadProducer{
			newSearchProducer(client),
			newCustomSearchProducer(client, cfg.CustomSearchAPIKey, cfg.CustomSearchCSEID),
			newSeedCrawlProducer(client, cfg.SeedURLs),
		},
	}
}

// Scan runs one full scan cycle across all producers.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	var leads []candidateLead
	for _, p := range s.producers {
		leads = append(leads, p.Produce(ctx)...)
	}

	created := 0
	seen := make(map[string]bool, len(leads))
	for _, lead := range leads {
		canonical, err := entity.CanonicalizeURL(lead.url)
		if err != nil || seen[canonical] {
			continue
		}
		seen[canonical] = true

		exists, err := s.candidates.ExistsByURL(ctx, canonical)
		if err != nil {
			slog.Error("discovery: candidate existence check failed", slog.String("url", canonical), slog.Any("error", err))
			continue
		}
		if exists {
			continue
		}

		candidate := &entity.SourceCandidate{
			CandidateID:     uuid.NewString(),
			URL:             canonical,
			DiscoveryMethod: lead.method,
			DiscoveryQuery:  lead.query,
			Status:          entity.CandidateDiscovered,
		}
		if err := s.candidates.Create(ctx, candidate); err != nil {
			slog.Error("discovery: failed to persist candidate", slog.String("url", canonical), slog.Any("error", err))
			continue
		}
		created++
	}

	slog.Info("discovery scan completed", slog.Int("leads", len(leads)), slog.Int("new_candidates", created))
	return created, nil
}
