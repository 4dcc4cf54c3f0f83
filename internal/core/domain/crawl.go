package domain

// Payload is the raw structured result of a tool handler.
// The formatter turns a Payload into markdown.
type Payload interface {
	isPayload()
}

// ScrapeRequest asks for the content of a single page.
type ScrapeRequest struct {
	URL     string
	Formats []string
}

// CrawlRequest starts an asynchronous crawl job.
type CrawlRequest struct {
	URL      string
	Limit    int
	MaxDepth int
	Formats  []string
}

// MapRequest asks for the links reachable from a site.
type MapRequest struct {
	URL               string
	IncludeSubdomains bool
}

// ExtractRequest asks for structured data pulled out of pages.
type ExtractRequest struct {
	URLs   []string
	Prompt string

	// Schema is a JSON schema describing the expected data.
	Schema map[string]any
}

// PageMetadata is the subset of page metadata the formatter renders.
type PageMetadata struct {
	Title       string
	Description string
	SourceURL   string
}

// ScrapedPage is the payload of scrape_url.
type ScrapedPage struct {
	Markdown string
	Metadata PageMetadata
}

func (*ScrapedPage) isPayload() {}

// CrawlJob is the payload of crawl_website.
type CrawlJob struct {
	ID string
}

func (*CrawlJob) isPayload() {}

// CrawlStatus is the payload of check_crawl_status.
type CrawlStatus struct {
	Status      string
	Total       int
	Completed   int
	CreditsUsed int
	ExpiresAt   string

	// Pages holds the pages crawled so far.
	Pages []PageMetadata
}

func (*CrawlStatus) isPayload() {}

// SiteMap is the payload of map_website.
type SiteMap struct {
	Links []string
}

func (*SiteMap) isPayload() {}

// Extraction is the payload of extract_structured_data.
type Extraction struct {
	// Data is the extracted JSON value.
	Data any
}

func (*Extraction) isPayload() {}
