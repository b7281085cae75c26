// Package discovery exposes the discovery loop's control surface (start,
// stop, status, manual scan/validate, candidate review, and ad hoc probe)
// to the HTTP layer.
package discovery

import (
	"context"

	"catchup-feed/internal/discovery"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

// Service wraps a *discovery.Loop plus direct access to its scanner,
// validator, and candidate store for the manual/operator-driven
// operations the automatic loop doesn't need on its own.
type Service struct {
	Loop       *discovery.Loop
	Scanner    *discovery.Scanner
	Validator  *discovery.Validator
	Candidates repository.SourceCandidateRepository
}

// NewService builds a Service.
func NewService(loop *discovery.Loop, scanner *discovery.Scanner, validator *discovery.Validator, candidates repository.SourceCandidateRepository) *Service {
	return &Service{Loop: loop, Scanner: scanner, Validator: validator, Candidates: candidates}
}

// Start begins the automatic scan/validate cron schedule.
func (s *Service) Start(ctx context.Context) {
	s.Loop.Start(ctx)
}

// Stop halts the automatic schedule.
func (s *Service) Stop() {
	s.Loop.Stop()
}

// Status reports whether the loop is running and each phase's next fire
// time.
func (s *Service) Status() discovery.Status {
	return s.Loop.GetStatus()
}

// Scan triggers one scan cycle immediately and returns the number of new
// candidates it created.
func (s *Service) Scan(ctx context.Context) (int, error) {
	return s.Scanner.Scan(ctx)
}

// Validate triggers one validate cycle immediately and returns the number
// of candidates it processed.
func (s *Service) Validate(ctx context.Context) (int, error) {
	return s.Validator.Validate(ctx)
}

// ListCandidates lists candidates by status, or every discovered-or-later
// candidate when status is empty.
func (s *Service) ListCandidates(ctx context.Context, status entity.CandidateStatus) ([]*entity.SourceCandidate, error) {
	if status != "" {
		return s.Candidates.ListByStatus(ctx, status)
	}

	var all []*entity.SourceCandidate
	for _, st := range []entity.CandidateStatus{
		entity.CandidateDiscovered, entity.CandidateValidating, entity.CandidateValidated,
		entity.CandidateApproved, entity.CandidateRejected,
	} {
		batch, err := s.Candidates.ListByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// Approve promotes a candidate to a live Source regardless of score.
func (s *Service) Approve(ctx context.Context, candidateID string) error {
	return s.Validator.ApproveCandidate(ctx, candidateID)
}

// Reject marks a candidate rejected.
func (s *Service) Reject(ctx context.Context, candidateID string) error {
	return s.Validator.RejectCandidate(ctx, candidateID)
}

// Probe checks whether an arbitrary URL looks like a viable source.
func (s *Service) Probe(ctx context.Context, url string) (discovery.ProbeResult, error) {
	return s.Validator.Probe(ctx, url)
}
