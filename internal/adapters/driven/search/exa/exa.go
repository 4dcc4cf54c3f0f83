// Package exa provides a search provider adapter for the Exa search API.
package exa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/webrelay/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SearchProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.exa.ai"
	ProviderName   = "exa"
)

// publishedDateLayout is the timestamp format Exa accepts for date filters.
const publishedDateLayout = "2006-01-02T15:04:05Z"

// Config holds configuration for the Exa provider.
type Config struct {
	// APIKey is the Exa API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.exa.ai).
	BaseURL string

	// HTTP carries the shared client settings. Provider, BaseURL and
	// Authorize are filled in by New.
	HTTP httpapi.Config
}

// Provider searches the web through Exa.
type Provider struct {
	client *httpapi.Client
	now    func() time.Time
}

type contentsOptions struct {
	Summary *summaryOptions `json:"summary,omitempty"`
}

type summaryOptions struct {
	Query string `json:"query,omitempty"`
}

// searchRequest is the Exa /search request format.
type searchRequest struct {
	Query              string          `json:"query"`
	NumResults         int             `json:"numResults,omitempty"`
	IncludeDomains     []string        `json:"includeDomains,omitempty"`
	ExcludeDomains     []string        `json:"excludeDomains,omitempty"`
	IncludeText        []string        `json:"includeText,omitempty"`
	StartPublishedDate string          `json:"startPublishedDate,omitempty"`
	Contents           contentsOptions `json:"contents"`
}

// searchResponse is the Exa /search response format.
type searchResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		PublishedDate string `json:"publishedDate"`
		Summary       string `json:"summary"`
	} `json:"results"`
}

// New creates an Exa provider.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w: EXA_API_KEY is not set", ProviderName, domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	httpCfg := cfg.HTTP
	httpCfg.Provider = ProviderName
	httpCfg.BaseURL = cfg.BaseURL
	apiKey := cfg.APIKey
	httpCfg.Authorize = func(h http.Header) {
		h.Set("x-api-key", apiKey)
	}

	return &Provider{
		client: httpapi.New(httpCfg),
		now:    time.Now,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return ProviderName
}

// Search runs a query and returns results in the order Exa ranked them.
func (p *Provider) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	body, err := p.client.Post(ctx, "/search", p.buildRequest(q))
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w: decode response: %w", ProviderName, domain.ErrUpstream, err)
	}

	results := make([]domain.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, domain.SearchResult{
			Title:         r.Title,
			URL:           r.URL,
			PublishedDate: r.PublishedDate,
			Summary:       r.Summary,
		})
	}
	return results, nil
}

func (p *Provider) buildRequest(q domain.SearchQuery) searchRequest {
	req := searchRequest{
		Query:          q.Query,
		NumResults:     q.NumResults,
		IncludeDomains: q.IncludeDomains,
		ExcludeDomains: q.ExcludeDomains,
		Contents: contentsOptions{
			Summary: &summaryOptions{Query: q.SummaryQuery},
		},
	}
	if q.IncludeText != "" {
		req.IncludeText = []string{q.IncludeText}
	}
	if q.MaxAgeDays > 0 {
		start := p.now().UTC().AddDate(0, 0, -q.MaxAgeDays)
		req.StartPublishedDate = start.Format(publishedDateLayout)
	}
	return req
}
