package domain

// SearchQuery is a provider-neutral web search request.
type SearchQuery struct {
	// Query is the free-text search query.
	Query string

	// NumResults is the maximum number of results.
	NumResults int

	// IncludeDomains restricts results to these domains.
	IncludeDomains []string

	// ExcludeDomains removes results from these domains.
	ExcludeDomains []string

	// IncludeText is a phrase every result must contain.
	IncludeText string

	// MaxAgeDays limits results to those published within the last N days.
	// Zero disables the filter.
	MaxAgeDays int

	// SummaryQuery steers the provider-generated summary.
	SummaryQuery string
}

// SearchResult represents a single web search hit.
type SearchResult struct {
	// Title is the page title. May be empty.
	Title string

	// URL is the page location.
	URL string

	// PublishedDate is the provider's publication date, if known.
	PublishedDate string

	// Summary is a provider-generated summary, if requested and available.
	Summary string
}

// SearchResults is the payload returned by search tools.
// Order is the provider's ranking and is never re-sorted.
type SearchResults []SearchResult

func (SearchResults) isPayload() {}
