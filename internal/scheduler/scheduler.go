// Package scheduler drives per-source collection on an independent cadence
// per spec.md §4.6: it fetches each enabled Source through the matching
// adapter, runs the normalize/fingerprint/dedup pipeline, persists accepted
// articles, appends a FetchLog, and re-evaluates the source's health
// status. A second cron entry sweeps pending articles stuck behind a
// crashed or slow enrichment run.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"catchup-feed/internal/adapter"
	"catchup-feed/internal/dedup"
	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/observability/metrics"
	"catchup-feed/internal/repository"

	"github.com/robfig/cron/v3"
)

// JitterFraction is the +/- bound applied to each source's configured
// fetch interval, per spec.md §4.6.
const JitterFraction = 0.10

// BackstopInterval is the cadence of the LLM backstop sweep.
const BackstopInterval = 10 * time.Minute

// BackstopSweeper re-enqueues articles that have been stuck in
// ProcessingPending or ProcessingInProgress for too long. Implemented by
// the enrichment package; declared here so the scheduler can depend on the
// behavior without importing enrichment.
type BackstopSweeper interface {
	SweepStalePending(ctx context.Context) (int, error)
}

// Enqueuer hands a freshly stored article straight to the enrichment worker
// pool, so it does not have to wait out the backstop sweep's staleness
// window. Implemented by the enrichment package; declared here for the
// same reason as BackstopSweeper.
type Enqueuer interface {
	Enqueue(articleID string)
}

// Scheduler owns the per-source cron entries and the article ingest
// pipeline shared by all of them.
type Scheduler struct {
	sources   repository.SourceRepository
	fetchLogs repository.FetchLogRepository
	articles  repository.ArticleRepository
	adapters  map[entity.SourceKind]adapter.Adapter
	checker   *dedup.Checker
	backstop  BackstopSweeper
	enqueuer  Enqueuer

	cron  *cron.Cron
	locks sync.Map // source ID -> *int32, CAS guard against overlapping runs
}

// New builds a Scheduler. adapters must have an entry for every
// entity.SourceKind the configured sources use; a missing entry causes
// that source's runs to fail fast with a clear error. enqueuer may be nil,
// in which case newly ingested articles sit pending until the next
// backstop sweep picks them up.
func New(
	sources repository.SourceRepository,
	fetchLogs repository.FetchLogRepository,
	articles repository.ArticleRepository,
	adapters map[entity.SourceKind]adapter.Adapter,
	checker *dedup.Checker,
	backstop BackstopSweeper,
	enqueuer Enqueuer,
) *Scheduler {
	return &Scheduler{
		sources:   sources,
		fetchLogs: fetchLogs,
		articles:  articles,
		adapters:  adapters,
		checker:   checker,
		backstop:  backstop,
		enqueuer:  enqueuer,
		cron:      cron.New(),
	}
}

// Start loads every enabled source, registers one jittered cron entry per
// source plus the backstop sweep, and starts the cron scheduler. ctx is
// retained for the lifetime of every scheduled run, not just this call.
func (s *Scheduler) Start(ctx context.Context) error {
	srcs, err := s.sources.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: list enabled sources: %w", err)
	}

	for _, src := range srcs {
		src := src
		schedule := newJitterSchedule(src.IntervalMin, JitterFraction)
		s.cron.Schedule(schedule, cron.FuncJob(func() {
			s.runSource(ctx, src)
		}))
	}

	s.cron.Schedule(newJitterSchedule(int(BackstopInterval/time.Minute), 0), cron.FuncJob(func() {
		s.runBackstop(ctx)
	}))

	s.cron.Start()
	slog.Info("scheduler started", slog.Int("sources", len(srcs)))
	return nil
}

// Stop halts the cron scheduler, waiting for any in-flight run to finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// runSource is one scheduled collection cycle for a single source. It is
// non-reentrant per source: if the previous cycle for this source is still
// running, this invocation is skipped rather than queued.
func (s *Scheduler) runSource(ctx context.Context, source *entity.Source) {
	lockVal, _ := s.locks.LoadOrStore(source.SourceID, new(int32))
	lock := lockVal.(*int32)
	if !atomic.CompareAndSwapInt32(lock, 0, 1) {
		slog.Warn("skipping source run, previous cycle still in flight",
			slog.String("source_id", source.SourceID))
		return
	}
	defer atomic.StoreInt32(lock, 0)

	runCtx, cancel := adapter.WithDeadline(ctx)
	defer cancel()

	log := &entity.FetchLog{
		SourceID:  source.SourceID,
		StartedAt: time.Now(),
	}

	if err := s.fetchAndIngest(runCtx, source, log); err != nil {
		log.Status = entity.FetchFailed
		log.ErrorMessage = err.Error()
		metrics.FeedCrawlErrors.WithLabelValues(source.SourceID, "fetch_failed").Inc()
		slog.Warn("source run failed", slog.String("source_id", source.SourceID), slog.Any("error", err))
	} else if log.ArticlesNew < log.ArticlesFound {
		log.Status = entity.FetchPartial
	} else {
		log.Status = entity.FetchSuccess
	}

	log.CompletedAt = time.Now()
	log.DurationMS = log.CompletedAt.Sub(log.StartedAt).Milliseconds()
	metrics.FeedCrawlDuration.WithLabelValues(source.SourceID).Observe(log.CompletedAt.Sub(log.StartedAt).Seconds())

	if err := s.fetchLogs.Create(ctx, log); err != nil {
		slog.Error("failed to persist fetch log", slog.String("source_id", source.SourceID), slog.Any("error", err))
	}
	if err := s.sources.TouchLastFetchedAt(ctx, source.SourceID, log.CompletedAt); err != nil {
		slog.Error("failed to touch source last_fetched_at", slog.String("source_id", source.SourceID), slog.Any("error", err))
	}

	s.reevaluateHealth(ctx, source)
}

// fetchAndIngest runs the adapter, then normalizes, fingerprints, dedups,
// and stores each resulting item, tallying counts onto log.
func (s *Scheduler) fetchAndIngest(ctx context.Context, source *entity.Source, log *entity.FetchLog) error {
	fetcher, ok := s.adapters[source.Kind]
	if !ok {
		return fmt.Errorf("no adapter registered for source kind %q", source.Kind)
	}

	raw, err := fetcher.Fetch(ctx, source)
	if err != nil {
		return err
	}
	log.ArticlesFound = len(raw)

	for _, item := range raw {
		if err := s.ingestOne(ctx, item, source, log); err != nil {
			slog.Debug("skipping raw item", slog.String("source_id", source.SourceID), slog.String("url", item.URL), slog.Any("error", err))
		}
	}
	return nil
}

func (s *Scheduler) ingestOne(ctx context.Context, item adapter.RawArticle, source *entity.Source, log *entity.FetchLog) error {
	candidate, err := buildCandidate(item, source)
	if err != nil {
		return fmt.Errorf("build candidate: %w", err)
	}
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("validate candidate: %w", err)
	}

	if err := s.checker.Check(ctx, candidate); err != nil {
		if _, ok := err.(*entity.DuplicateError); ok {
			log.ArticlesDedup++
			return nil
		}
		return fmt.Errorf("dedup check: %w", err)
	}

	if err := s.articles.Create(ctx, candidate); err != nil {
		return fmt.Errorf("store article: %w", err)
	}
	s.checker.Index(candidate.ID, candidate.ContentMinHash)
	log.ArticlesNew++
	metrics.ArticlesFetchedTotal.WithLabelValues(source.Name, source.SourceID).Inc()
	if s.enqueuer != nil {
		s.enqueuer.Enqueue(candidate.ID)
	}
	return nil
}

// reevaluateHealth recomputes and persists the source's health status from
// its recent fetch log window (spec.md §7).
func (s *Scheduler) reevaluateHealth(ctx context.Context, source *entity.Source) {
	since := time.Now().Add(-24 * time.Hour)
	logs, err := s.fetchLogs.ListBySource(ctx, source.SourceID, since)
	if err != nil {
		slog.Error("failed to list fetch logs for health evaluation", slog.String("source_id", source.SourceID), slog.Any("error", err))
		return
	}
	health := entity.EvaluateHealth(logs, source.IntervalMin, time.Now())
	if err := s.sources.UpdateHealth(ctx, source.SourceID, health); err != nil {
		slog.Error("failed to update source health", slog.String("source_id", source.SourceID), slog.Any("error", err))
	}
}

// runBackstop sweeps articles stuck pending enrichment, per spec.md §4.7.
func (s *Scheduler) runBackstop(ctx context.Context) {
	if s.backstop == nil {
		return
	}
	n, err := s.backstop.SweepStalePending(ctx)
	if err != nil {
		slog.Error("backstop sweep failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		slog.Info("backstop sweep re-enqueued stale pending articles", slog.Int("count", n))
	}
}
