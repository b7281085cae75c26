package adapter

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"catchup-feed/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
)

// MaxLinkHeuristicFetches bounds the third Universal-adapter strategy's
// per-cycle fetch count (spec.md §4.1).
const MaxLinkHeuristicFetches = 20

// commonFeedPaths are probed when no <link rel="alternate"> is declared.
var commonFeedPaths = []string{"/feed", "/rss", "/atom.xml", "/feed.xml", "/rss.xml"}

// articleSlugPattern matches a path segment that looks like an article
// slug: mostly lowercase words joined by hyphens, at least two words.
var articleSlugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)+$`)

// categoryIndexSegments are path segments that indicate a listing page
// rather than an article.
var categoryIndexSegments = map[string]bool{
	"category": true, "categories": true, "tag": true, "tags": true,
	"page": true, "author": true, "search": true, "archive": true,
}

// UniversalAdapter is the zero-configuration fallback for sources with no
// declared adapter kind: it cascades feed autodiscovery, a feed-URL scan,
// and link-heuristic page extraction, returning on the first strategy that
// yields results (spec.md §4.1).
type UniversalAdapter struct {
	client      *http.Client
	clientCfg   ClientConfig
	feed        *FeedAdapter
	readability *ReadabilityExtractor
}

// NewUniversalAdapter builds a UniversalAdapter.
func NewUniversalAdapter(client *http.Client, clientCfg ClientConfig, feed *FeedAdapter, readability *ReadabilityExtractor) *UniversalAdapter {
	return &UniversalAdapter{client: client, clientCfg: clientCfg, feed: feed, readability: readability}
}

// Fetch runs the three-strategy cascade against source.URL.
func (a *UniversalAdapter) Fetch(ctx context.Context, source *entity.Source) ([]RawArticle, error) {
	body, err := fetchBody(ctx, a.client, a.clientCfg, source.URL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, &entity.ParseError{Op: "parse HTML " + source.URL, Err: err}
	}

	if feedURL := discoverDeclaredFeed(doc, source.URL); feedURL != "" {
		if items, err := a.fetchAsFeed(ctx, source, feedURL); err == nil && len(items) > 0 {
			return items, nil
		}
	}

	if feedURL := a.scanCommonFeedPaths(ctx, source.URL); feedURL != "" {
		if items, err := a.fetchAsFeed(ctx, source, feedURL); err == nil && len(items) > 0 {
			return items, nil
		}
	}

	return a.extractByLinkHeuristic(ctx, doc, source.URL)
}

// DetectFeed runs the cascade's first two strategies only (declared
// <link rel="alternate"> then a scan of common feed paths) against
// pageURL, without the third strategy's link-heuristic page extraction.
// Used by discovery candidate validation (spec.md §4.10), which only
// needs to know whether a feed exists, not to fetch articles from it.
func (a *UniversalAdapter) DetectFeed(ctx context.Context, pageURL string) (string, bool) {
	body, err := fetchBody(ctx, a.client, a.clientCfg, pageURL)
	if err != nil {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", false
	}
	if feedURL := discoverDeclaredFeed(doc, pageURL); feedURL != "" {
		return feedURL, true
	}
	if feedURL := a.scanCommonFeedPaths(ctx, pageURL); feedURL != "" {
		return feedURL, true
	}
	return "", false
}

func (a *UniversalAdapter) fetchAsFeed(ctx context.Context, source *entity.Source, feedURL string) ([]RawArticle, error) {
	probe := &entity.Source{SourceID: source.SourceID, URL: feedURL}
	return a.feed.Fetch(ctx, probe)
}

// discoverDeclaredFeed looks for <link rel="alternate" type="application/rss+xml|application/atom+xml">.
func discoverDeclaredFeed(doc *goquery.Document, baseURL string) string {
	var found string
	doc.Find(`link[rel="alternate"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		typ, _ := s.Attr("type")
		if typ != "application/rss+xml" && typ != "application/atom+xml" {
			return true
		}
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return true
		}
		found = resolveAgainst(baseURL, href)
		return false
	})
	return found
}

// scanCommonFeedPaths probes well-known feed paths, returning the first
// one that responds with a 200.
func (a *UniversalAdapter) scanCommonFeedPaths(ctx context.Context, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	for _, p := range commonFeedPaths {
		candidate := *base
		candidate.Path = p
		candidate.RawQuery = ""
		if _, err := fetchBody(ctx, a.client, a.clientCfg, candidate.String()); err == nil {
			return candidate.String()
		}
	}
	return ""
}

// extractByLinkHeuristic collects outbound links that look like articles
// and runs full-text extraction on each, up to MaxLinkHeuristicFetches.
func (a *UniversalAdapter) extractByLinkHeuristic(ctx context.Context, doc *goquery.Document, baseURL string) ([]RawArticle, error) {
	var candidates []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := resolveAgainst(baseURL, href)
		if resolved == "" || seen[resolved] || !looksLikeArticleURL(resolved) {
			return
		}
		seen[resolved] = true
		candidates = append(candidates, resolved)
	})

	var items []RawArticle
	for i, link := range candidates {
		if i >= MaxLinkHeuristicFetches {
			break
		}
		text, err := a.readability.Extract(ctx, link)
		if err != nil || text == "" {
			continue
		}
		items = append(items, RawArticle{URL: link, BodyText: text})
	}
	return items, nil
}

// looksLikeArticleURL applies the path-depth/slug heuristic from
// spec.md §4.1.
func looksLikeArticleURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return false
	}
	for _, seg := range segments {
		if categoryIndexSegments[strings.ToLower(seg)] {
			return false
		}
	}
	last := segments[len(segments)-1]
	return articleSlugPattern.MatchString(last) || containsYear(segments)
}

var yearPattern = regexp.MustCompile(`^(19|20)\d{2}$`)

func containsYear(segments []string) bool {
	for _, seg := range segments {
		if yearPattern.MatchString(seg) {
			return true
		}
	}
	return false
}

func resolveAgainst(baseURL, ref string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(rel).String()
}
