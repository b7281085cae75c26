package discovery

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"catchup-feed/internal/adapter"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

// ErrCandidateNotFound is returned by ApproveCandidate/RejectCandidate when
// the candidate ID does not exist.
var ErrCandidateNotFound = errors.New("candidate not found")

// ValidateBatchSize bounds how many discovered candidates one validate
// cycle probes (spec.md §4.10: "up to 10/run").
const ValidateBatchSize = 10

// MaxTrialSamples is the per-candidate trial-fetch cap (spec.md §4.10:
// "trial fetch up to 5 samples").
const MaxTrialSamples = 5

// minBodyLength is the threshold used for ValidationDetail.BodiesLongEnough.
const minBodyLength = 200

// domainSlugPattern matches runs of characters not valid in a source ID slug.
var domainSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// feedDetector is the subset of adapter.UniversalAdapter used here.
type feedDetector interface {
	DetectFeed(ctx context.Context, pageURL string) (string, bool)
}

// feedFetcher is the subset of adapter.FeedAdapter used here.
type feedFetcher interface {
	Fetch(ctx context.Context, source *entity.Source) ([]adapter.RawArticle, error)
}

// universalFetcher is the subset of adapter.UniversalAdapter's trial-fetch
// fallback used when DetectFeed finds no feed (spec.md §4.10: "invoke Feed
// adapter (if feed found) else Universal adapter").
type universalFetcher interface {
	Fetch(ctx context.Context, source *entity.Source) ([]adapter.RawArticle, error)
}

// Validator runs the validate phase: for each discovered candidate, it
// checks reachability, detects a feed, trial-fetches a sample of
// articles, scores quality and relevance, and either rejects the
// candidate or promotes it (auto-approving when the combined score
// clears entity.AutoApprovalThreshold).
type Validator struct {
	candidates repository.SourceCandidateRepository
	sources    repository.SourceRepository
	detector   feedDetector
	fetcher    feedFetcher
	universal  universalFetcher
}

// NewValidator builds a Validator. universal is used as the trial-fetch
// fallback when detector finds no feed for a candidate.
func NewValidator(candidates repository.SourceCandidateRepository, sources repository.SourceRepository, detector feedDetector, fetcher feedFetcher, universal universalFetcher) *Validator {
	return &Validator{candidates: candidates, sources: sources, detector: detector, fetcher: fetcher, universal: universal}
}

// Validate runs one validate cycle and returns how many candidates were
// processed.
func (v *Validator) Validate(ctx context.Context) (int, error) {
	pending, err := v.candidates.ListByStatus(ctx, entity.CandidateDiscovered)
	if err != nil {
		return 0, err
	}
	if len(pending) > ValidateBatchSize {
		pending = pending[:ValidateBatchSize]
	}

	for _, candidate := range pending {
		v.validateOne(ctx, candidate)
	}
	return len(pending), nil
}

func (v *Validator) validateOne(ctx context.Context, candidate *entity.SourceCandidate) {
	now := time.Now()
	candidate.ValidatedAt = &now

	detail := entity.ValidationDetail{}

	feedURL, found := v.detector.DetectFeed(ctx, candidate.URL)
	detail.FeedFound = found

	var raw []adapter.RawArticle
	var err error
	if found {
		candidate.FeedURL = feedURL
		candidate.Kind = entity.SourceKindFeed
		raw, err = v.fetcher.Fetch(ctx, &entity.Source{SourceID: candidate.CandidateID, URL: feedURL})
	} else {
		candidate.Kind = entity.SourceKindUniversal
		raw, err = v.universal.Fetch(ctx, &entity.Source{SourceID: candidate.CandidateID, URL: candidate.URL})
	}
	if err != nil || len(raw) == 0 {
		v.reject(ctx, candidate, detail)
		return
	}
	detail.Reachable = true
	if len(raw) > MaxTrialSamples {
		raw = raw[:MaxTrialSamples]
	}

	samples := make([]sampleText, 0, len(raw))
	previews := make([]entity.ArticlePreview, 0, len(raw))
	titlesNonEmpty, bodiesLongEnough, publishedAtFilled, urlsCanonical := true, true, true, true

	for _, item := range raw {
		body := item.BodyText
		samples = append(samples, sampleText{Title: item.Title, Body: body})
		previews = append(previews, entity.ArticlePreview{
			Title:       item.Title,
			URL:         item.URL,
			PublishedAt: item.PublishedAt,
			BodyLength:  len(body),
		})

		if item.Title == "" {
			titlesNonEmpty = false
		}
		if len(body) < minBodyLength {
			bodiesLongEnough = false
		}
		if item.PublishedAt.IsZero() {
			publishedAtFilled = false
		}
		if _, err := entity.CanonicalizeURL(item.URL); err != nil {
			urlsCanonical = false
		}
	}

	detail.ArticlesFetched = len(raw)
	detail.TitlesNonEmpty = titlesNonEmpty
	detail.BodiesLongEnough = bodiesLongEnough
	detail.PublishedAtFilled = publishedAtFilled
	detail.URLsCanonical = urlsCanonical

	quality := qualityScore(&detail)
	relevance, hits := relevanceScore(samples)
	detail.KeywordHits = hits

	candidate.QualityScore = quality
	candidate.RelevanceScore = relevance
	candidate.CombinedScore = entity.CombinedScore(quality, relevance)
	candidate.SamplePreviews = previews
	candidate.ValidationDetail = detail
	candidate.Status = entity.CandidateValidated

	if candidate.CombinedScore >= entity.AutoApprovalThreshold {
		v.approve(ctx, candidate)
		return
	}

	if err := v.candidates.Update(ctx, candidate); err != nil {
		slog.Error("discovery: failed to persist validated candidate",
			slog.String("candidate_id", candidate.CandidateID), slog.Any("error", err))
	}
}

// newSourceID builds a promoted Source's ID as a slug of rawURL's domain
// plus a random suffix (spec.md §4.10), so it reads as a stable handle
// rather than the candidate's internal record ID.
func newSourceID(rawURL string) string {
	slug := "source"
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Host != "" {
		host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
		if host != "" {
			slug = domainSlugPattern.ReplaceAllString(host, "-")
			slug = strings.Trim(slug, "-")
		}
	}
	if slug == "" {
		slug = "source"
	}
	return slug + "-" + uuid.NewString()[:8]
}

func (v *Validator) reject(ctx context.Context, candidate *entity.SourceCandidate, detail entity.ValidationDetail) {
	now := time.Now()
	candidate.Status = entity.CandidateRejected
	candidate.ValidationDetail = detail
	candidate.DecidedAt = &now
	if err := v.candidates.Update(ctx, candidate); err != nil {
		slog.Error("discovery: failed to persist rejected candidate",
			slog.String("candidate_id", candidate.CandidateID), slog.Any("error", err))
	}
}

func (v *Validator) approve(ctx context.Context, candidate *entity.SourceCandidate) {
	now := time.Now()
	candidate.Status = entity.CandidateApproved
	candidate.AutoApproved = true
	candidate.DecidedAt = &now

	sourceURL := candidate.URL
	if candidate.Kind == entity.SourceKindFeed && candidate.FeedURL != "" {
		sourceURL = candidate.FeedURL
	}

	source := &entity.Source{
		SourceID:    newSourceID(candidate.URL),
		Name:        candidate.URL,
		Kind:        candidate.Kind,
		URL:         sourceURL,
		IntervalMin: 30,
		Priority:    5,
		Enabled:     true,
	}
	if err := source.Validate(); err != nil {
		slog.Error("discovery: auto-approved source failed validation",
			slog.String("candidate_id", candidate.CandidateID), slog.Any("error", err))
		candidate.Status = entity.CandidateValidated
		candidate.AutoApproved = false
		if err := v.candidates.Update(ctx, candidate); err != nil {
			slog.Error("discovery: failed to persist candidate after validation failure",
				slog.String("candidate_id", candidate.CandidateID), slog.Any("error", err))
		}
		return
	}

	if err := v.sources.Create(ctx, source); err != nil {
		slog.Error("discovery: failed to create auto-approved source",
			slog.String("candidate_id", candidate.CandidateID), slog.Any("error", err))
		return
	}
	if err := v.candidates.Update(ctx, candidate); err != nil {
		slog.Error("discovery: failed to persist approved candidate",
			slog.String("candidate_id", candidate.CandidateID), slog.Any("error", err))
	}
	slog.Info("discovery: auto-approved candidate",
		slog.String("candidate_id", candidate.CandidateID), slog.Float64("combined_score", candidate.CombinedScore))
}

// ApproveCandidate promotes a candidate regardless of its combined score,
// for an operator overriding the auto-approval threshold by hand.
func (v *Validator) ApproveCandidate(ctx context.Context, candidateID string) error {
	candidate, err := v.candidates.Get(ctx, candidateID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return ErrCandidateNotFound
	}
	v.approve(ctx, candidate)
	return nil
}

// RejectCandidate marks a candidate rejected by hand.
func (v *Validator) RejectCandidate(ctx context.Context, candidateID string) error {
	candidate, err := v.candidates.Get(ctx, candidateID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return ErrCandidateNotFound
	}
	v.reject(ctx, candidate, candidate.ValidationDetail)
	return nil
}

// ProbeResult reports whether an arbitrary URL looks like a viable source,
// without persisting a candidate record.
type ProbeResult struct {
	Reachable       bool
	FeedFound       bool
	FeedURL         string
	ArticlesFetched int
}

// Probe runs the feed-detection and trial-fetch steps of validateOne
// against an ad hoc URL, for an operator checking candidacy before
// deciding whether to let the scan phase pick it up on its own.
func (v *Validator) Probe(ctx context.Context, rawURL string) (ProbeResult, error) {
	canonical, err := entity.CanonicalizeURL(rawURL)
	if err != nil {
		return ProbeResult{}, err
	}

	feedURL, found := v.detector.DetectFeed(ctx, canonical)
	if !found {
		return ProbeResult{Reachable: true, FeedFound: false}, nil
	}

	raw, err := v.fetcher.Fetch(ctx, &entity.Source{SourceID: "probe", URL: feedURL})
	if err != nil {
		return ProbeResult{Reachable: true, FeedFound: true, FeedURL: feedURL}, nil
	}
	return ProbeResult{Reachable: true, FeedFound: true, FeedURL: feedURL, ArticlesFetched: len(raw)}, nil
}
