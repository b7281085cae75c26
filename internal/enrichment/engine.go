package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
	"catchup-feed/internal/resilience/retry"
)

// DefaultWorkers is the bounded worker pool size (spec.md §4.7).
const DefaultWorkers = 4

// ExtractTimeout bounds a single LLM extraction call.
const ExtractTimeout = 90 * time.Second

// EmbedTimeout bounds a single embedding call.
const EmbedTimeout = 30 * time.Second

// queueCapacity is the in-process job queue's buffer. A full queue means
// the worker pool is saturated; Enqueue drops and logs rather than
// blocking the caller (the scheduler and the backstop sweep both call it
// from time-sensitive paths).
const queueCapacity = 1024

// extractRetryConfig implements spec.md §4.7 step 3: one retry on
// transient (network/5xx/429) failures with a fixed 2s backoff.
var extractRetryConfig = retry.Config{
	MaxAttempts:    2,
	InitialDelay:   2 * time.Second,
	MaxDelay:       2 * time.Second,
	Multiplier:     1,
	JitterFraction: 0,
}

// Publisher hands a just-completed article to the Dispatcher. Declared
// here so the engine can depend on the behavior without importing
// internal/dispatch.
type Publisher interface {
	PublishCompleted(article *entity.Article)
}

// Engine runs the bounded-concurrency enrichment worker pool.
type Engine struct {
	articles  repository.ArticleRepository
	provider  LLMProvider
	publisher Publisher
	workers   int

	jobs chan string
	wg   sync.WaitGroup
}

// New builds an Engine with the given worker count (DefaultWorkers if <= 0).
func New(articles repository.ArticleRepository, provider LLMProvider, publisher Publisher, workers int) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{
		articles:  articles,
		provider:  provider,
		publisher: publisher,
		workers:   workers,
		jobs:      make(chan string, queueCapacity),
	}
}

// Start spawns the worker pool. Workers run until ctx is canceled and the
// job queue drains.
func (e *Engine) Start(ctx context.Context) {
	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker(ctx)
	}
}

// Stop closes the job queue and waits for in-flight work to finish.
func (e *Engine) Stop() {
	close(e.jobs)
	e.wg.Wait()
}

// Enqueue schedules articleID for enrichment. Non-blocking: if the queue
// is full the job is dropped and logged, since the backstop sweep will
// pick it up again on its next tick.
func (e *Engine) Enqueue(articleID string) {
	select {
	case e.jobs <- articleID:
	default:
		slog.Warn("enrichment queue full, dropping job", slog.String("article_id", articleID))
	}
}

// SweepStalePending implements scheduler.BackstopSweeper: it re-enqueues
// articles that have sat in pending/processing for more than one full
// scheduler cycle (spec.md §4.6's "LLM backstop" task).
func (e *Engine) SweepStalePending(ctx context.Context) (int, error) {
	const staleAfter = 20 * time.Minute
	stale, err := e.articles.ListStalePending(ctx, time.Now().Add(-staleAfter), 500)
	if err != nil {
		return 0, fmt.Errorf("enrichment: list stale pending: %w", err)
	}
	for _, a := range stale {
		e.Enqueue(a.ID)
	}
	return len(stale), nil
}

// TriggerAll re-enqueues every article currently pending or processing,
// regardless of how long it has been sitting, for the manual "process now"
// operator endpoint. Unlike SweepStalePending it does not wait out
// staleAfter first.
func (e *Engine) TriggerAll(ctx context.Context) (int, error) {
	const batchLimit = 5000
	pending, err := e.articles.ListStalePending(ctx, time.Now(), batchLimit)
	if err != nil {
		return 0, fmt.Errorf("enrichment: list pending: %w", err)
	}
	for _, a := range pending {
		e.Enqueue(a.ID)
	}
	return len(pending), nil
}

func (e *Engine) worker(ctx context.Context) {
	defer e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case articleID, ok := <-e.jobs:
			if !ok {
				return
			}
			e.processArticle(ctx, articleID)
		}
	}
}

// processArticle runs the full pending -> processing -> completed|failed
// lifecycle for one article (spec.md §4.7 steps 1-7). Any failure is
// logged and marks the article failed; it never aborts the worker.
func (e *Engine) processArticle(ctx context.Context, articleID string) {
	claimed, err := e.articles.TryClaimProcessing(ctx, articleID)
	if err != nil {
		slog.Error("enrichment: claim failed", slog.String("article_id", articleID), slog.Any("error", err))
		return
	}
	if !claimed {
		return
	}

	article, err := e.articles.Get(ctx, articleID)
	if err != nil || article == nil {
		slog.Error("enrichment: failed to load claimed article", slog.String("article_id", articleID), slog.Any("error", err))
		return
	}

	if err := e.enrich(ctx, article); err != nil {
		article.ProcessingStatus = entity.ProcessingFailed
		article.EnrichmentError = err.Error()
		if uerr := e.articles.Update(ctx, article); uerr != nil {
			slog.Error("enrichment: failed to persist failure", slog.String("article_id", articleID), slog.Any("error", uerr))
		}
		slog.Warn("enrichment failed", slog.String("article_id", articleID), slog.Any("error", err))
		return
	}

	article.ProcessingStatus = entity.ProcessingCompleted
	article.LLMProcessed = true
	if err := e.articles.Update(ctx, article); err != nil {
		slog.Error("enrichment: failed to persist completed article", slog.String("article_id", articleID), slog.Any("error", err))
		return
	}
	if e.publisher != nil {
		e.publisher.PublishCompleted(article)
	}
}

func (e *Engine) enrich(ctx context.Context, article *entity.Article) error {
	result, err := e.extract(ctx, article)
	if err != nil {
		return err
	}
	if err := validate(result); err != nil {
		return err
	}
	applyExtraction(article, result)

	embedCtx, cancel := context.WithTimeout(ctx, EmbedTimeout)
	defer cancel()
	embedding, err := e.provider.Embed(embedCtx, article.Title+"\n"+article.SummaryEN)
	if err != nil {
		return fmt.Errorf("enrichment: embed: %w", err)
	}
	if len(embedding) != entity.EmbeddingDimension {
		return fmt.Errorf("enrichment: embedding dimension mismatch: got %d want %d", len(embedding), entity.EmbeddingDimension)
	}
	article.Embedding = embedding
	return nil
}

func (e *Engine) extract(ctx context.Context, article *entity.Article) (*ExtractionResult, error) {
	extractCtx, cancel := context.WithTimeout(ctx, ExtractTimeout)
	defer cancel()

	var result *ExtractionResult
	retryErr := retry.WithBackoff(extractCtx, extractRetryConfig, func() error {
		r, err := e.provider.Extract(extractCtx, article.Title, article.BodyText)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("enrichment: extract: %w", retryErr)
	}
	return result, nil
}

func applyExtraction(article *entity.Article, r *ExtractionResult) {
	article.SummaryEN = r.SummaryEN
	article.SummaryZH = r.SummaryZH
	article.PrimaryTopic = r.PrimaryTopic
	article.SecondaryTopics = r.SecondaryTopics
	article.ContentType = r.ContentType
	article.Regions = r.Regions
	article.Entities = r.Entities
	article.Sentiment = entity.Sentiment(r.Sentiment)
	article.MarketImpact = entity.MarketImpact(r.MarketImpact)
	article.Urgency = entity.Urgency(r.Urgency)
	article.KeyMetrics = r.KeyMetrics

	article.TransportModes = article.TransportModes[:0]
	for _, m := range r.TransportModes {
		article.TransportModes = append(article.TransportModes, entity.TransportMode(m))
	}
}
