package adapter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/resilience/circuitbreaker"

	readability "github.com/go-shiori/go-readability"
)

var errNoReadableContent = errors.New("no readable content found")

// ReadabilityExtractor extracts clean article text from an arbitrary HTML
// page using Mozilla's Readability algorithm, exactly as the teacher's
// ReadabilityFetcher does. It backstops the Scraper adapter when no detail
// selector is configured, and is the Universal adapter's sole extraction
// strategy.
type ReadabilityExtractor struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	clientCfg      ClientConfig
}

// NewReadabilityExtractor builds a ReadabilityExtractor.
func NewReadabilityExtractor(client *http.Client, clientCfg ClientConfig) *ReadabilityExtractor {
	return &ReadabilityExtractor{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		clientCfg:      clientCfg,
	}
}

// Extract fetches urlStr and returns its Readability-extracted plain text.
func (e *ReadabilityExtractor) Extract(ctx context.Context, urlStr string) (string, error) {
	result, err := e.circuitBreaker.Execute(func() (interface{}, error) {
		return e.doExtract(ctx, urlStr)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (e *ReadabilityExtractor) doExtract(ctx context.Context, urlStr string) (string, error) {
	body, err := fetchBody(ctx, e.client, e.clientCfg, urlStr)
	if err != nil {
		return "", err
	}

	parsed, parseErr := url.Parse(urlStr)
	if parseErr != nil {
		parsed = nil
	}

	article, err := readability.FromReader(io.NopCloser(bytes.NewReader(body)), parsed)
	if err != nil {
		return "", &entity.ParseError{Op: "readability extract " + urlStr, Err: err}
	}
	if article.TextContent != "" {
		return article.TextContent, nil
	}
	if article.Content != "" {
		return article.Content, nil
	}
	return "", &entity.ParseError{Op: "readability extract " + urlStr, Err: errNoReadableContent}
}
