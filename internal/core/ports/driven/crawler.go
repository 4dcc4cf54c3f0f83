package driven

import (
	"context"

	"github.com/custodia-labs/webrelay/internal/core/domain"
)

// Crawler fetches and analyses web pages through an external API.
type Crawler interface {
	// Scrape fetches a single page.
	Scrape(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapedPage, error)

	// StartCrawl starts an asynchronous crawl and returns its job handle.
	StartCrawl(ctx context.Context, req domain.CrawlRequest) (*domain.CrawlJob, error)

	// CrawlStatus reports the progress of a crawl job.
	CrawlStatus(ctx context.Context, jobID string) (*domain.CrawlStatus, error)

	// Map lists the links reachable from a site.
	Map(ctx context.Context, req domain.MapRequest) (*domain.SiteMap, error)

	// Extract pulls structured data out of pages, waiting for the job to finish.
	Extract(ctx context.Context, req domain.ExtractRequest) (*domain.Extraction, error)

	// Name identifies the provider in logs and error messages.
	Name() string
}
