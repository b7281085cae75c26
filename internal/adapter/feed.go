package adapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// FeedAdapter pulls RSS/Atom feeds via gofeed, wrapped in the teacher's
// circuit breaker + retry resilience pair. Per entry it also attempts
// full-text extraction of the linked page via readability, falling back to
// the feed's own description/content on failure.
type FeedAdapter struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	readability    *ReadabilityExtractor
}

// NewFeedAdapter builds a FeedAdapter using client for transport.
func NewFeedAdapter(client *http.Client, readability *ReadabilityExtractor) *FeedAdapter {
	return &FeedAdapter{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		readability:    readability,
	}
}

// Fetch parses source.URL as an RSS/Atom feed and returns one RawArticle
// per entry.
func (a *FeedAdapter) Fetch(ctx context.Context, source *entity.Source) ([]RawArticle, error) {
	var items []RawArticle

	retryErr := retry.WithBackoff(ctx, a.retryConfig, func() error {
		result, err := a.circuitBreaker.Execute(func() (interface{}, error) {
			return a.doFetch(ctx, source.URL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed adapter circuit breaker open",
					slog.String("source_id", source.SourceID),
					slog.String("state", a.circuitBreaker.State().String()))
			}
			return err
		}
		items = result.([]RawArticle)
		return nil
	})
	if retryErr != nil {
		return nil, &entity.NetworkError{Op: "feed fetch " + source.URL, Err: retryErr}
	}

	if a.readability != nil {
		for i := range items {
			if full, err := a.readability.Extract(ctx, items[i].URL); err == nil && full != "" {
				items[i].BodyText = full
			}
		}
	}
	return items, nil
}

func (a *FeedAdapter) doFetch(ctx context.Context, feedURL string) ([]RawArticle, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "CatchUpFeedBot"
	fp.Client = a.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, &entity.ParseError{Op: "parse feed " + feedURL, Err: err}
	}

	items := make([]RawArticle, 0, len(feed.Items))
	for _, it := range feed.Items {
		pubAt := time.Now()
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		}

		content := it.Content
		if content == "" {
			content = it.Description
		}

		items = append(items, RawArticle{
			Title:       it.Title,
			URL:         it.Link,
			BodyHTML:    content,
			PublishedAt: pubAt,
		})
	}
	return items, nil
}
