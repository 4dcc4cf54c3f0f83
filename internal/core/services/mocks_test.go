package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockSearchProvider implements driven.SearchProvider for testing.
type mockSearchProvider struct {
	mu      sync.Mutex
	results []domain.SearchResult
	err     error
	calls   []domain.SearchQuery

	// block, when set, makes Search wait for ctx to finish.
	block bool
}

var _ driven.SearchProvider = (*mockSearchProvider)(nil)

func (m *mockSearchProvider) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, q)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockSearchProvider) Name() string {
	return "mock"
}

func (m *mockSearchProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockSearchProvider) lastQuery() domain.SearchQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return domain.SearchQuery{}
	}
	return m.calls[len(m.calls)-1]
}

// mockCrawler implements driven.Crawler for testing.
type mockCrawler struct {
	page       *domain.ScrapedPage
	job        *domain.CrawlJob
	status     *domain.CrawlStatus
	siteMap    *domain.SiteMap
	extraction *domain.Extraction
	err        error

	scrapeReqs  []domain.ScrapeRequest
	crawlReqs   []domain.CrawlRequest
	statusIDs   []string
	mapReqs     []domain.MapRequest
	extractReqs []domain.ExtractRequest
}

var _ driven.Crawler = (*mockCrawler)(nil)

func (m *mockCrawler) Scrape(_ context.Context, req domain.ScrapeRequest) (*domain.ScrapedPage, error) {
	m.scrapeReqs = append(m.scrapeReqs, req)
	return m.page, m.err
}

func (m *mockCrawler) StartCrawl(_ context.Context, req domain.CrawlRequest) (*domain.CrawlJob, error) {
	m.crawlReqs = append(m.crawlReqs, req)
	return m.job, m.err
}

func (m *mockCrawler) CrawlStatus(_ context.Context, jobID string) (*domain.CrawlStatus, error) {
	m.statusIDs = append(m.statusIDs, jobID)
	return m.status, m.err
}

func (m *mockCrawler) Map(_ context.Context, req domain.MapRequest) (*domain.SiteMap, error) {
	m.mapReqs = append(m.mapReqs, req)
	return m.siteMap, m.err
}

func (m *mockCrawler) Extract(_ context.Context, req domain.ExtractRequest) (*domain.Extraction, error) {
	m.extractReqs = append(m.extractReqs, req)
	return m.extraction, m.err
}

func (m *mockCrawler) Name() string {
	return "mock"
}

func (m *mockCrawler) totalCalls() int {
	return len(m.scrapeReqs) + len(m.crawlReqs) + len(m.statusIDs) + len(m.mapReqs) + len(m.extractReqs)
}

// newTestDispatcher wires search and crawl tools against the given mocks.
func newTestDispatcher(search *mockSearchProvider, crawler *mockCrawler, opts DispatcherOptions) *Dispatcher {
	r := NewRegistry()
	if search != nil {
		if err := NewSearchTools(search, SearchDefaults{}).Register(r); err != nil {
			panic(err)
		}
	}
	if crawler != nil {
		if err := NewCrawlTools(crawler).Register(r); err != nil {
			panic(err)
		}
	}
	return NewDispatcher(r, opts)
}
