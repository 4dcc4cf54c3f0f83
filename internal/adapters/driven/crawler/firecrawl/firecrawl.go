// Package firecrawl provides a crawler adapter for the Firecrawl v1 API.
package firecrawl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/webrelay/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/core/ports/driven"
	"github.com/custodia-labs/webrelay/internal/logger"
)

// Ensure Crawler implements the interface.
var _ driven.Crawler = (*Crawler)(nil)

// Default configuration values.
const (
	DefaultBaseURL      = "https://api.firecrawl.dev/v1"
	DefaultPollInterval = 2 * time.Second
	ProviderName        = "firecrawl"
)

// Extract job states.
const (
	extractCompleted = "completed"
	extractFailed    = "failed"
	extractCancelled = "cancelled"
)

// Config holds configuration for the Firecrawl crawler.
type Config struct {
	// APIKey is the Firecrawl API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.firecrawl.dev/v1).
	BaseURL string

	// PollInterval is the wait between extract status checks (default: 2s).
	PollInterval time.Duration

	// HTTP carries the shared client settings. Provider, BaseURL and
	// Authorize are filled in by New.
	HTTP httpapi.Config
}

// Crawler scrapes, crawls, maps and extracts through Firecrawl.
type Crawler struct {
	client       *httpapi.Client
	pollInterval time.Duration
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats,omitempty"`
}

type scrapeOptions struct {
	Formats []string `json:"formats,omitempty"`
}

type crawlRequest struct {
	URL           string        `json:"url"`
	Limit         int           `json:"limit,omitempty"`
	MaxDepth      int           `json:"maxDepth"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type mapRequest struct {
	URL               string `json:"url"`
	IncludeSubdomains bool   `json:"includeSubdomains"`
}

type extractRequest struct {
	URLs   []string       `json:"urls"`
	Prompt string         `json:"prompt,omitempty"`
	Schema map[string]any `json:"schema,omitempty"`
}

// New creates a Firecrawl crawler.
func New(cfg Config) (*Crawler, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w: FIRECRAWL_API_KEY is not set", ProviderName, domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	httpCfg := cfg.HTTP
	httpCfg.Provider = ProviderName
	httpCfg.BaseURL = cfg.BaseURL
	apiKey := cfg.APIKey
	httpCfg.Authorize = func(h http.Header) {
		h.Set("Authorization", "Bearer "+apiKey)
	}

	return &Crawler{
		client:       httpapi.New(httpCfg),
		pollInterval: cfg.PollInterval,
	}, nil
}

// Name returns the provider name.
func (c *Crawler) Name() string {
	return ProviderName
}

// Scrape fetches a single page.
func (c *Crawler) Scrape(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapedPage, error) {
	body, err := c.post(ctx, "/scrape", scrapeRequest{URL: req.URL, Formats: req.Formats})
	if err != nil {
		return nil, err
	}

	data := gjson.GetBytes(body, "data")
	return &domain.ScrapedPage{
		Markdown: data.Get("markdown").String(),
		Metadata: pageMetadata(data.Get("metadata")),
	}, nil
}

// StartCrawl starts an asynchronous crawl job.
func (c *Crawler) StartCrawl(ctx context.Context, req domain.CrawlRequest) (*domain.CrawlJob, error) {
	body, err := c.post(ctx, "/crawl", crawlRequest{
		URL:           req.URL,
		Limit:         req.Limit,
		MaxDepth:      req.MaxDepth,
		ScrapeOptions: scrapeOptions{Formats: req.Formats},
	})
	if err != nil {
		return nil, err
	}

	id := firstString(body, "id", "jobId")
	if id == "" {
		return nil, fmt.Errorf("%s: %w: crawl started without a job id", ProviderName, domain.ErrUpstream)
	}
	return &domain.CrawlJob{ID: id}, nil
}

// CrawlStatus reports the progress of a crawl job.
func (c *Crawler) CrawlStatus(ctx context.Context, jobID string) (*domain.CrawlStatus, error) {
	body, err := c.get(ctx, "/crawl/"+url.PathEscape(jobID))
	if err != nil {
		return nil, err
	}

	status := &domain.CrawlStatus{
		Status:      gjson.GetBytes(body, "status").String(),
		Total:       int(firstInt(body, "total", "totalCount")),
		Completed:   int(gjson.GetBytes(body, "completed").Int()),
		CreditsUsed: int(gjson.GetBytes(body, "creditsUsed").Int()),
		ExpiresAt:   gjson.GetBytes(body, "expiresAt").String(),
	}
	gjson.GetBytes(body, "data").ForEach(func(_, page gjson.Result) bool {
		status.Pages = append(status.Pages, pageMetadata(page.Get("metadata")))
		return true
	})
	return status, nil
}

// Map lists the links reachable from a site.
func (c *Crawler) Map(ctx context.Context, req domain.MapRequest) (*domain.SiteMap, error) {
	body, err := c.post(ctx, "/map", mapRequest{URL: req.URL, IncludeSubdomains: req.IncludeSubdomains})
	if err != nil {
		return nil, err
	}

	m := &domain.SiteMap{Links: []string{}}
	gjson.GetBytes(body, "links").ForEach(func(_, link gjson.Result) bool {
		if s := link.String(); s != "" {
			m.Links = append(m.Links, s)
		}
		return true
	})
	return m, nil
}

// Extract starts an extract job and polls it until it finishes or ctx ends.
func (c *Crawler) Extract(ctx context.Context, req domain.ExtractRequest) (*domain.Extraction, error) {
	body, err := c.post(ctx, "/extract", extractRequest{URLs: req.URLs, Prompt: req.Prompt, Schema: req.Schema})
	if err != nil {
		return nil, err
	}

	// Some deployments answer synchronously.
	if data := gjson.GetBytes(body, "data"); data.Exists() && isDone(body) {
		return &domain.Extraction{Data: data.Value()}, nil
	}

	id := gjson.GetBytes(body, "id").String()
	if id == "" {
		return nil, fmt.Errorf("%s: %w: extract started without a job id", ProviderName, domain.ErrUpstream)
	}
	return c.awaitExtract(ctx, id)
}

func (c *Crawler) awaitExtract(ctx context.Context, id string) (*domain.Extraction, error) {
	log := logger.Component("firecrawl")
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w: extract job %s: %w", ProviderName, domain.ErrTimeout, id, ctx.Err())
		case <-ticker.C:
		}

		body, err := c.get(ctx, "/extract/"+url.PathEscape(id))
		if err != nil {
			return nil, err
		}

		status := gjson.GetBytes(body, "status").String()
		log.Debug().Str("job", id).Str("status", status).Msg("extract poll")

		switch strings.ToLower(status) {
		case extractCompleted:
			return &domain.Extraction{Data: gjson.GetBytes(body, "data").Value()}, nil
		case extractFailed, extractCancelled:
			msg := firstString(body, "error", "message")
			if msg == "" {
				msg = status
			}
			return nil, fmt.Errorf("%s: %w: extract job %s: %s", ProviderName, domain.ErrUpstream, id, msg)
		}
	}
}

func (c *Crawler) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := c.client.Post(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	return body, checkResponse(body)
}

func (c *Crawler) get(ctx context.Context, path string) ([]byte, error) {
	body, err := c.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return body, checkResponse(body)
}

// checkResponse rejects bodies that are not JSON or report success=false.
func checkResponse(body []byte) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("%s: %w: invalid JSON response", ProviderName, domain.ErrUpstream)
	}
	if ok := gjson.GetBytes(body, "success"); ok.Exists() && !ok.Bool() {
		msg := firstString(body, "error", "message")
		if msg == "" {
			msg = "request was not successful"
		}
		return fmt.Errorf("%s: %w: %s", ProviderName, domain.ErrUpstream, msg)
	}
	return nil
}

func isDone(body []byte) bool {
	status := gjson.GetBytes(body, "status")
	return !status.Exists() || strings.EqualFold(status.String(), extractCompleted)
}

func pageMetadata(meta gjson.Result) domain.PageMetadata {
	source := meta.Get("sourceURL").String()
	if source == "" {
		source = meta.Get("url").String()
	}
	return domain.PageMetadata{
		Title:       meta.Get("title").String(),
		Description: meta.Get("description").String(),
		SourceURL:   source,
	}
}

func firstString(body []byte, paths ...string) string {
	for _, p := range paths {
		if r := gjson.GetBytes(body, p); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}

func firstInt(body []byte, paths ...string) int64 {
	for _, p := range paths {
		if r := gjson.GetBytes(body, p); r.Exists() {
			return r.Int()
		}
	}
	return 0
}
