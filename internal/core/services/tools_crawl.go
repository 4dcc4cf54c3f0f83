package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/core/ports/driven"
)

// Crawl tool names.
const (
	ToolScrapeURL             = "scrape_url"
	ToolCrawlWebsite          = "crawl_website"
	ToolCheckCrawlStatus      = "check_crawl_status"
	ToolMapWebsite            = "map_website"
	ToolExtractStructuredData = "extract_structured_data"
)

// Crawl defaults applied when the caller omits a value.
const (
	DefaultCrawlLimit    = 10
	DefaultCrawlMaxDepth = 2
)

// DefaultFormats is the output format requested when none is given.
var DefaultFormats = []string{"markdown"}

// ScrapeParams are the arguments of scrape_url.
type ScrapeParams struct {
	URL     string   `mapstructure:"url"`
	Formats []string `mapstructure:"formats"`
}

// CrawlParams are the arguments of crawl_website.
type CrawlParams struct {
	URL      string   `mapstructure:"url"`
	Limit    int      `mapstructure:"limit"`
	MaxDepth int      `mapstructure:"max_depth"`
	Formats  []string `mapstructure:"formats"`
}

// CrawlStatusParams are the arguments of check_crawl_status.
type CrawlStatusParams struct {
	JobID string `mapstructure:"job_id"`
}

// MapParams are the arguments of map_website.
type MapParams struct {
	URL               string `mapstructure:"url"`
	IncludeSubdomains bool   `mapstructure:"include_subdomains"`
}

// ExtractParams are the arguments of extract_structured_data.
type ExtractParams struct {
	URLs   []string       `mapstructure:"urls"`
	Prompt string         `mapstructure:"prompt"`
	Schema map[string]any `mapstructure:"schema"`
}

// CrawlTools exposes a Crawler as the scrape, crawl, map and extract tools.
type CrawlTools struct {
	crawler driven.Crawler
}

// NewCrawlTools creates the crawl tool handlers.
func NewCrawlTools(crawler driven.Crawler) *CrawlTools {
	return &CrawlTools{crawler: crawler}
}

// Register adds all crawl tools to r.
func (t *CrawlTools) Register(r *Registry) error {
	tools := []struct {
		desc    domain.ToolDescriptor
		handler Handler
	}{
		{scrapeDescriptor(), Typed(t.Scrape)},
		{crawlDescriptor(), Typed(t.Crawl)},
		{crawlStatusDescriptor(), Typed(t.CrawlStatus)},
		{mapDescriptor(), Typed(t.Map)},
		{extractDescriptor(), Typed(t.Extract)},
	}
	for _, tool := range tools {
		if err := r.Register(tool.desc, tool.handler); err != nil {
			return err
		}
	}
	return nil
}

func formatsParam() domain.Param {
	return domain.Param{
		Name:        "formats",
		Type:        domain.ParamArray,
		Items:       domain.ParamString,
		Default:     []any{"markdown"},
		Description: "Output formats, e.g. markdown or html",
	}
}

func scrapeDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        ToolScrapeURL,
		Description: "Scrape a single web page and return its content as markdown with title and source metadata.",
		Params: []domain.Param{
			{Name: "url", Type: domain.ParamString, Required: true, Description: "The URL to scrape"},
			formatsParam(),
		},
	}
}

func crawlDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name: ToolCrawlWebsite,
		Description: "Start an asynchronous crawl of a website. Returns a job ID to pass to " +
			ToolCheckCrawlStatus + ".",
		Params: []domain.Param{
			{Name: "url", Type: domain.ParamString, Required: true, Description: "The starting URL"},
			{Name: "limit", Type: domain.ParamInteger, Default: DefaultCrawlLimit,
				Description: "Maximum number of pages to crawl"},
			{Name: "max_depth", Type: domain.ParamInteger, Default: DefaultCrawlMaxDepth,
				Description: "Maximum link depth to follow"},
			formatsParam(),
		},
	}
}

func crawlStatusDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        ToolCheckCrawlStatus,
		Description: "Check the progress of a crawl job and list the pages crawled so far.",
		Params: []domain.Param{
			{Name: "job_id", Type: domain.ParamString, Required: true, Description: "The crawl job ID"},
		},
	}
}

func mapDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        ToolMapWebsite,
		Description: "List the URLs reachable from a website without fetching their content.",
		Params: []domain.Param{
			{Name: "url", Type: domain.ParamString, Required: true, Description: "The site to map"},
			{Name: "include_subdomains", Type: domain.ParamBoolean, Default: true,
				Description: "Include links on subdomains"},
		},
	}
}

func extractDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name: ToolExtractStructuredData,
		Description: "Extract structured data from one or more pages, guided by a prompt " +
			"and a JSON schema. Returns the data as a JSON code block.",
		Params: []domain.Param{
			{Name: "urls", Type: domain.ParamArray, Items: domain.ParamString, Required: true,
				Description: "Pages to extract from"},
			{Name: "prompt", Type: domain.ParamString, Required: true,
				Description: "What to extract"},
			{Name: "schema", Type: domain.ParamObject, Required: true,
				Description: "JSON schema the extracted data should follow"},
		},
	}
}

// Scrape handles scrape_url.
func (t *CrawlTools) Scrape(ctx context.Context, p ScrapeParams) (domain.Payload, error) {
	if err := validateURL("url", p.URL); err != nil {
		return nil, err
	}
	return t.crawler.Scrape(ctx, domain.ScrapeRequest{
		URL:     p.URL,
		Formats: formatsOrDefault(p.Formats),
	})
}

// Crawl handles crawl_website.
func (t *CrawlTools) Crawl(ctx context.Context, p CrawlParams) (domain.Payload, error) {
	if err := validateURL("url", p.URL); err != nil {
		return nil, err
	}
	if p.Limit <= 0 {
		p.Limit = DefaultCrawlLimit
	}
	if p.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: max_depth must not be negative", domain.ErrInvalidArgument)
	}
	return t.crawler.StartCrawl(ctx, domain.CrawlRequest{
		URL:      p.URL,
		Limit:    p.Limit,
		MaxDepth: p.MaxDepth,
		Formats:  formatsOrDefault(p.Formats),
	})
}

// CrawlStatus handles check_crawl_status.
func (t *CrawlTools) CrawlStatus(ctx context.Context, p CrawlStatusParams) (domain.Payload, error) {
	id := strings.TrimSpace(p.JobID)
	if id == "" {
		return nil, fmt.Errorf("%w: job_id must not be empty", domain.ErrInvalidArgument)
	}
	if strings.ContainsAny(id, "/?#") {
		return nil, fmt.Errorf("%w: job_id %q is malformed", domain.ErrInvalidArgument, id)
	}
	return t.crawler.CrawlStatus(ctx, id)
}

// Map handles map_website.
func (t *CrawlTools) Map(ctx context.Context, p MapParams) (domain.Payload, error) {
	if err := validateURL("url", p.URL); err != nil {
		return nil, err
	}
	return t.crawler.Map(ctx, domain.MapRequest{
		URL:               p.URL,
		IncludeSubdomains: p.IncludeSubdomains,
	})
}

// Extract handles extract_structured_data.
func (t *CrawlTools) Extract(ctx context.Context, p ExtractParams) (domain.Payload, error) {
	if len(p.URLs) == 0 {
		return nil, fmt.Errorf("%w: urls must not be empty", domain.ErrInvalidArgument)
	}
	for i, u := range p.URLs {
		if err := validateURL(fmt.Sprintf("urls[%d]", i), u); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(p.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt must not be empty", domain.ErrInvalidArgument)
	}
	return t.crawler.Extract(ctx, domain.ExtractRequest{
		URLs:   p.URLs,
		Prompt: p.Prompt,
		Schema: p.Schema,
	})
}

// validateURL accepts absolute http and https URLs only.
func validateURL(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidArgument, field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidArgument, field, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute http(s) URL, got %q", domain.ErrInvalidArgument, field, raw)
	}
	return nil
}

func formatsOrDefault(formats []string) []string {
	if len(formats) == 0 {
		return append([]string(nil), DefaultFormats...)
	}
	return formats
}
