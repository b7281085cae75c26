package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"

	"github.com/PuerkitoBio/goquery"
)

// ScraperAdapter pulls article listings from a page driven entirely by
// entity.ScraperConfig's CSS selectors (spec.md §4.1). When detail
// selectors are configured it also visits each entry's URL for full body
// text; otherwise it falls back to ReadabilityExtractor for full-text
// extraction, matching the teacher's Webflow-scraper-plus-readability
// fallback pattern.
type ScraperAdapter struct {
	client         *http.Client
	clientCfg      ClientConfig
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	readability    *ReadabilityExtractor
}

// NewScraperAdapter builds a ScraperAdapter.
func NewScraperAdapter(client *http.Client, clientCfg ClientConfig, readability *ReadabilityExtractor) *ScraperAdapter {
	return &ScraperAdapter{
		client:         client,
		clientCfg:      clientCfg,
		circuitBreaker: circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		retryConfig:    retry.WebScraperConfig(),
		readability:    readability,
	}
}

// Fetch lists entries from source.URL and, where possible, enriches each
// with full-text content.
func (a *ScraperAdapter) Fetch(ctx context.Context, source *entity.Source) ([]RawArticle, error) {
	cfg := source.ScraperConfig
	if cfg == nil {
		return nil, &entity.ConfigError{Field: "scraper_config", Message: "required for scraper sources"}
	}

	entries, err := a.listEntries(ctx, source.URL, cfg)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if cfg.DetailBodySelector != "" {
			if body, err := a.fetchDetail(ctx, entries[i].URL, cfg); err == nil {
				entries[i].BodyText = body
			}
		} else if a.readability != nil {
			if body, err := a.readability.Extract(ctx, entries[i].URL); err == nil {
				entries[i].BodyText = body
			}
		}
	}
	return entries, nil
}

func (a *ScraperAdapter) listEntries(ctx context.Context, listURL string, cfg *entity.ScraperConfig) ([]RawArticle, error) {
	var doc *goquery.Document
	retryErr := retry.WithBackoff(ctx, a.retryConfig, func() error {
		result, err := a.circuitBreaker.Execute(func() (interface{}, error) {
			return a.fetchDocument(ctx, listURL)
		})
		if err != nil {
			return err
		}
		doc = result.(*goquery.Document)
		return nil
	})
	if retryErr != nil {
		return nil, &entity.NetworkError{Op: "scrape list " + listURL, Err: retryErr}
	}

	var items []RawArticle
	doc.Find(cfg.ListSelector).Each(func(i int, entryEl *goquery.Selection) {
		title := strings.TrimSpace(entryEl.Find(cfg.EntryTitleSelector).Text())
		if title == "" {
			return
		}
		href, exists := entryEl.Find(cfg.EntryLinkSelector).Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}
		items = append(items, RawArticle{
			Title:       title,
			URL:         makeAbsoluteURL(strings.TrimSpace(href), cfg.URLPrefix),
			PublishedAt: time.Now(),
		})
	})
	if len(items) == 0 {
		return nil, &entity.ParseError{Op: "scrape list", Err: fmt.Errorf("no entries matched selector %q", cfg.ListSelector)}
	}
	return items, nil
}

func (a *ScraperAdapter) fetchDetail(ctx context.Context, entryURL string, cfg *entity.ScraperConfig) (string, error) {
	var doc *goquery.Document
	retryErr := retry.WithBackoff(ctx, a.retryConfig, func() error {
		result, err := a.circuitBreaker.Execute(func() (interface{}, error) {
			return a.fetchDocument(ctx, entryURL)
		})
		if err != nil {
			return err
		}
		doc = result.(*goquery.Document)
		return nil
	})
	if retryErr != nil {
		return "", retryErr
	}
	return strings.TrimSpace(doc.Find(cfg.DetailBodySelector).Text()), nil
}

func (a *ScraperAdapter) fetchDocument(ctx context.Context, urlStr string) (*goquery.Document, error) {
	body, err := fetchBody(ctx, a.client, a.clientCfg, urlStr)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, &entity.ParseError{Op: "parse HTML " + urlStr, Err: err}
	}
	return doc, nil
}

// makeAbsoluteURL joins a relative href against prefix when href isn't
// already absolute.
func makeAbsoluteURL(href, prefix string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if prefix == "" {
		return href
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(href, "/")
}
