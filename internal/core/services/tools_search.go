package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/core/ports/driven"
)

// Search tool names.
const (
	ToolSearchWeb         = "search_web"
	ToolAdvancedSearchWeb = "advanced_search_web"
)

// DefaultNumResults is used when neither the caller nor the config sets a result count.
const DefaultNumResults = 5

// DefaultSummaryQuery steers the provider-side summary of each result.
const DefaultSummaryQuery = "Main points and key takeaways"

// SearchDefaults holds configured fallbacks for search arguments.
type SearchDefaults struct {
	// NumResults applies when num_results is omitted or not positive.
	NumResults int

	// IncludeDomains applies when include_domains is omitted.
	IncludeDomains []string

	// SummaryQuery is sent with every search.
	SummaryQuery string
}

// SearchWebParams are the arguments of search_web.
type SearchWebParams struct {
	Query      string `mapstructure:"query"`
	NumResults int    `mapstructure:"num_results"`
}

// AdvancedSearchParams are the arguments of advanced_search_web.
type AdvancedSearchParams struct {
	Query          string   `mapstructure:"query"`
	NumResults     int      `mapstructure:"num_results"`
	IncludeDomains []string `mapstructure:"include_domains"`
	ExcludeDomains []string `mapstructure:"exclude_domains"`
	IncludeText    string   `mapstructure:"include_text"`
	MaxAgeDays     int      `mapstructure:"max_age_days"`
}

// SearchTools exposes a SearchProvider as search_web and advanced_search_web.
type SearchTools struct {
	provider driven.SearchProvider
	defaults SearchDefaults
}

// NewSearchTools creates the search tool handlers.
func NewSearchTools(provider driven.SearchProvider, defaults SearchDefaults) *SearchTools {
	if defaults.NumResults <= 0 {
		defaults.NumResults = DefaultNumResults
	}
	if defaults.SummaryQuery == "" {
		defaults.SummaryQuery = DefaultSummaryQuery
	}
	return &SearchTools{provider: provider, defaults: defaults}
}

// Register adds both search tools to r.
func (t *SearchTools) Register(r *Registry) error {
	if err := r.Register(t.searchWebDescriptor(), Typed(t.SearchWeb)); err != nil {
		return err
	}
	return r.Register(t.advancedSearchDescriptor(), Typed(t.AdvancedSearch))
}

func (t *SearchTools) searchWebDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name: ToolSearchWeb,
		Description: "Search the web and return results as markdown: title, URL, " +
			"publication date and a short summary for each hit.",
		Params: []domain.Param{
			{Name: "query", Type: domain.ParamString, Required: true, Description: "The search query"},
			{Name: "num_results", Type: domain.ParamInteger, Default: t.defaults.NumResults,
				Description: "Number of results to return"},
		},
	}
}

func (t *SearchTools) advancedSearchDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name: ToolAdvancedSearchWeb,
		Description: "Web search with filters: restrict or exclude domains, require a phrase, " +
			"and limit results to recent publications. Returns markdown results with summaries.",
		Params: []domain.Param{
			{Name: "query", Type: domain.ParamString, Required: true, Description: "The search query"},
			{Name: "num_results", Type: domain.ParamInteger, Default: t.defaults.NumResults,
				Description: "Number of results to return"},
			{Name: "include_domains", Type: domain.ParamArray, Items: domain.ParamString,
				Description: "Only return results from these domains"},
			{Name: "exclude_domains", Type: domain.ParamArray, Items: domain.ParamString,
				Description: "Never return results from these domains"},
			{Name: "include_text", Type: domain.ParamString,
				Description: "Text that must appear in every result"},
			{Name: "max_age_days", Type: domain.ParamInteger,
				Description: "Only return results published within this many days"},
		},
	}
}

// SearchWeb handles search_web.
func (t *SearchTools) SearchWeb(ctx context.Context, p SearchWebParams) (domain.Payload, error) {
	q, err := t.baseQuery(p.Query, p.NumResults)
	if err != nil {
		return nil, err
	}
	return t.search(ctx, q)
}

// AdvancedSearch handles advanced_search_web.
func (t *SearchTools) AdvancedSearch(ctx context.Context, p AdvancedSearchParams) (domain.Payload, error) {
	q, err := t.baseQuery(p.Query, p.NumResults)
	if err != nil {
		return nil, err
	}
	if p.MaxAgeDays < 0 {
		return nil, fmt.Errorf("%w: max_age_days must not be negative", domain.ErrInvalidArgument)
	}

	q.IncludeDomains = p.IncludeDomains
	if len(q.IncludeDomains) == 0 {
		q.IncludeDomains = t.defaults.IncludeDomains
	}
	q.ExcludeDomains = p.ExcludeDomains
	q.IncludeText = p.IncludeText
	q.MaxAgeDays = p.MaxAgeDays

	return t.search(ctx, q)
}

func (t *SearchTools) baseQuery(query string, numResults int) (domain.SearchQuery, error) {
	if strings.TrimSpace(query) == "" {
		return domain.SearchQuery{}, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidArgument)
	}
	if numResults <= 0 {
		numResults = t.defaults.NumResults
	}
	return domain.SearchQuery{
		Query:        query,
		NumResults:   numResults,
		SummaryQuery: t.defaults.SummaryQuery,
	}, nil
}

func (t *SearchTools) search(ctx context.Context, q domain.SearchQuery) (domain.Payload, error) {
	results, err := t.provider.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return domain.SearchResults(results), nil
}
