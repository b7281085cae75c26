package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

// DefaultWorkers is the bounded delivery worker pool size (spec.md §5).
const DefaultWorkers = 4

// DeliveryTimeout bounds a single HTTP POST attempt.
const DeliveryTimeout = 10 * time.Second

// queueCapacity is the in-process delivery queue's buffer.
const queueCapacity = 1024

// backoffSchedule is the fixed delay before each retry attempt after the
// first, per spec.md §4.9: give up after 3 total attempts.
var backoffSchedule = []time.Duration{2 * time.Second, 4 * time.Second}

// job is one queued delivery: one subscription receiving one article.
type job struct {
	subscription *entity.Subscription
	article      *entity.Article
}

// Sender delivers completed articles to webhook subscriptions over a
// bounded worker pool, grounded on the teacher's Discord/Slack notifier
// shape (internal/infra/notifier): an http.Client with a fixed timeout,
// a classified retry loop, and per-attempt logging — generalized from a
// single fixed destination to an arbitrary per-subscription URL and
// secret, and from best-effort logging to a persisted delivery log.
type Sender struct {
	httpClient *http.Client
	logs       repository.WebhookDeliveryLogRepository
	workers    int

	jobs chan job
	wg   sync.WaitGroup
}

// New builds a Sender with the given worker count (DefaultWorkers if <= 0).
func New(logs repository.WebhookDeliveryLogRepository, workers int) *Sender {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Sender{
		httpClient: &http.Client{Timeout: DeliveryTimeout},
		logs:       logs,
		workers:    workers,
		jobs:       make(chan job, queueCapacity),
	}
}

// Start spawns the worker pool.
func (s *Sender) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
}

// Stop closes the job queue and waits for in-flight deliveries to drain,
// bounded by the caller's context (spec.md §5: "drain webhook queue <=15s").
func (s *Sender) Stop() {
	close(s.jobs)
	s.wg.Wait()
}

// Enqueue schedules a delivery of article to subscription. Non-blocking:
// a full queue drops the job and logs, since webhook delivery is
// best-effort relative to the enrichment pipeline that triggered it.
func (s *Sender) Enqueue(subscription *entity.Subscription, article *entity.Article) {
	select {
	case s.jobs <- job{subscription: subscription, article: article}:
	default:
		slog.Warn("webhook delivery queue full, dropping job",
			slog.String("subscription_id", subscription.ID), slog.String("article_id", article.ID))
	}
}

func (s *Sender) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-s.jobs:
			if !ok {
				return
			}
			s.deliver(ctx, j.subscription, j.article)
		}
	}
}

// deliver attempts the HTTP POST up to len(backoffSchedule)+1 (3) times,
// logging every attempt to the delivery log regardless of outcome.
func (s *Sender) deliver(ctx context.Context, sub *entity.Subscription, article *entity.Article) {
	body, err := json.Marshal(Envelope{Type: EventType, Data: NewArticlePayload(article)})
	if err != nil {
		slog.Error("webhook: failed to marshal payload",
			slog.String("subscription_id", sub.ID), slog.Any("error", err))
		return
	}
	signature := sign(body, sub.WebhookSecret)

	maxAttempts := len(backoffSchedule) + 1
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, latency, attemptErr := s.attempt(ctx, sub.WebhookURL, body, signature)

		log := entity.WebhookDeliveryLog{
			SubscriptionID: sub.ID,
			ArticleID:      article.ID,
			Attempt:        attempt,
			HTTPStatus:     status,
			LatencyMS:      latency.Milliseconds(),
			DeliveredAt:    time.Now(),
		}
		if attemptErr != nil {
			log.ErrorMessage = attemptErr.Error()
		}
		if err := s.logs.Create(ctx, &log); err != nil {
			slog.Error("webhook: failed to persist delivery log",
				slog.String("subscription_id", sub.ID), slog.Any("error", err))
		}

		if log.Succeeded() {
			return
		}
		if attempt == maxAttempts {
			slog.Warn("webhook delivery exhausted retries",
				slog.String("subscription_id", sub.ID), slog.String("article_id", article.ID),
				slog.Int("attempts", attempt))
			return
		}

		select {
		case <-time.After(backoffSchedule[attempt-1]):
		case <-ctx.Done():
			return
		}
	}
}

// attempt performs one signed POST, returning the HTTP status observed (0
// if the request never got a response) and the call's latency.
func (s *Sender) attempt(ctx context.Context, url string, body []byte, signature string) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)
	req.Header.Set("X-Webhook-Event", EventType)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, latency, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, latency, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.StatusCode, latency, nil
}

// sign computes the hex-encoded HMAC-SHA256 of body using secret.
func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
