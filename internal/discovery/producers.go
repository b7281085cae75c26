package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// candidateLead is a raw (url, discovery method, query) triple a producer
// proposes; the scanner turns survivors into entity.SourceCandidate rows.
type candidateLead struct {
	url    string
	method string
	query  string
}

// searchProducer issues free-text queries against DuckDuckGo's HTML search
// endpoint (no API key required) and extracts result links. Grounded on
// the goquery result-link-extraction idiom already used by
// adapter.UniversalAdapter's link heuristic, pointed at a search results
// page instead of an article listing page.
type searchProducer struct {
	client *http.Client
}

func newSearchProducer(client *http.Client) *searchProducer {
	return &searchProducer{client: client}
}

func (p *searchProducer) Produce(ctx context.Context) []candidateLead {
	var leads []candidateLead
	for _, q := range searchQueries {
		select {
		case <-ctx.Done():
			return leads
		default:
		}
		results, err := p.search(ctx, q)
		if err != nil {
			slog.Debug("discovery: search query failed", slog.String("query", q), slog.Any("error", err))
			continue
		}
		for _, r := range results {
			leads = append(leads, candidateLead{url: r, method: "search", query: q})
		}
	}
	return leads
}

func (p *searchProducer) search(ctx context.Context, query string) ([]string, error) {
	endpoint := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; catchup-feed-discovery/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a.result__a").Each(func(i int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})
	return links, nil
}

// customSearchSource is the second scan producer, active only when
// config supplies an API key and search engine ID. Grounded directly on
// the pack's own Google Custom Search integration
// (fetchFromGoogleCSE in the retrieval pack's news-pipeline), which calls
// the customsearch/v1 REST endpoint with net/http rather than a
// generated SDK client.
type customSearchProducer struct {
	client *http.Client
	apiKey string
	cseID  string
}

func newCustomSearchProducer(client *http.Client, apiKey, cseID string) *customSearchProducer {
	return &customSearchProducer{client: client, apiKey: apiKey, cseID: cseID}
}

func (p *customSearchProducer) enabled() bool {
	return p.apiKey != "" && p.cseID != ""
}

func (p *customSearchProducer) Produce(ctx context.Context) []candidateLead {
	if !p.enabled() {
		return nil
	}
	var leads []candidateLead
	for _, q := range searchQueries {
		select {
		case <-ctx.Done():
			return leads
		default:
		}
		items, err := p.search(ctx, q)
		if err != nil {
			slog.Debug("discovery: custom search query failed", slog.String("query", q), slog.Any("error", err))
			continue
		}
		for _, item := range items {
			leads = append(leads, candidateLead{url: item, method: "custom_search", query: q})
		}
	}
	return leads
}

func (p *customSearchProducer) search(ctx context.Context, query string) ([]string, error) {
	endpoint := fmt.Sprintf(
		"https://www.googleapis.com/customsearch/v1?q=%s&cx=%s&key=%s&num=10",
		url.QueryEscape(query), url.QueryEscape(p.cseID), url.QueryEscape(p.apiKey),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("custom search API returned %d", resp.StatusCode)
	}

	var parsed struct {
		Items []struct {
			Link string `json:"link"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("custom search JSON decode: %w", err)
	}

	links := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}
	return links, nil
}

// seedCrawlProducer walks outward from a fixed set of seed URLs,
// following outbound links up to MaxPagesPerCycle pages, and proposes
// every distinct external host it discovers as a candidate lead. Shares
// adapter's HTTP client config but does not import adapter's unexported
// fetch helpers, since the crawl here wants raw HTML rather than the
// parsed-RawArticle shape those helpers return.
type seedCrawlProducer struct {
	client   *http.Client
	seedURLs []string
	maxPages int
}

// MaxSeedCrawlPages bounds one scan cycle's page budget (spec.md §4.10:
// "seed-URL crawl ~12 pages").
const MaxSeedCrawlPages = 12

func newSeedCrawlProducer(client *http.Client, seedURLs []string) *seedCrawlProducer {
	return &seedCrawlProducer{client: client, seedURLs: seedURLs, maxPages: MaxSeedCrawlPages}
}

func (p *seedCrawlProducer) Produce(ctx context.Context) []candidateLead {
	var leads []candidateLead
	visited := make(map[string]bool)
	queue := append([]string{}, p.seedURLs...)
	fetched := 0

	for len(queue) > 0 && fetched < p.maxPages {
		select {
		case <-ctx.Done():
			return leads
		default:
		}
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true

		links, err := p.fetchLinks(ctx, next)
		if err != nil {
			slog.Debug("discovery: seed crawl fetch failed", slog.String("url", next), slog.Any("error", err))
			continue
		}
		fetched++

		for _, link := range links {
			if !visited[link] {
				queue = append(queue, link)
			}
			leads = append(leads, candidateLead{url: link, method: "seed_crawl", query: next})
		}
	}
	return leads
}

func (p *seedCrawlProducer) fetchLinks(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed page returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if resolved.Host == base.Host {
			return
		}
		links = append(links, resolved.String())
	})
	return links, nil
}
