package driven

import (
	"context"

	"github.com/custodia-labs/webrelay/internal/core/domain"
)

// SearchProvider performs web searches against an external API.
// Implementations classify failures with the domain error sentinels.
type SearchProvider interface {
	// Search runs the query and returns results in provider ranking order.
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)

	// Name identifies the provider in logs and error messages.
	Name() string
}
