package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/core/formatter"
)

func threeResults() []domain.SearchResult {
	return []domain.SearchResult{
		{Title: "One", URL: "https://one.example", Summary: "first"},
		{Title: "Two", URL: "https://two.example", PublishedDate: "2025-01-02"},
		{Title: "Three", URL: "https://three.example"},
	}
}

func countBullets(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "- ") {
			n++
		}
	}
	return n
}

func TestNewDispatcher_SealsRegistry(t *testing.T) {
	r := NewRegistry()
	NewDispatcher(r, DispatcherOptions{})
	assert.True(t, r.Sealed())
}

func TestDispatcher_Tools(t *testing.T) {
	d := newTestDispatcher(&mockSearchProvider{}, &mockCrawler{}, DispatcherOptions{})

	var names []string
	for _, desc := range d.Tools() {
		names = append(names, desc.Name)
	}
	assert.Equal(t, []string{
		ToolSearchWeb,
		ToolAdvancedSearchWeb,
		ToolScrapeURL,
		ToolCrawlWebsite,
		ToolCheckCrawlStatus,
		ToolMapWebsite,
		ToolExtractStructuredData,
	}, names)
}

func TestDispatcher_UnknownTool(t *testing.T) {
	search := &mockSearchProvider{results: threeResults()}
	crawler := &mockCrawler{}
	d := newTestDispatcher(search, crawler, DispatcherOptions{})

	out := d.Call(context.Background(), domain.ToolInvocation{
		Tool: "delete_everything",
		Args: map[string]any{"query": "x"},
	})

	assert.True(t, out.Failed())
	assert.Equal(t, domain.KindUnknownTool, out.Kind)
	assert.True(t, strings.HasPrefix(out.Text, formatter.ErrorPrefix))
	assert.Contains(t, out.Text, "delete_everything")
	assert.Equal(t, 0, search.callCount())
	assert.Equal(t, 0, crawler.totalCalls())
}

func TestDispatcher_MissingRequiredArgument(t *testing.T) {
	search := &mockSearchProvider{results: threeResults()}
	d := newTestDispatcher(search, nil, DispatcherOptions{})

	out := d.Call(context.Background(), domain.ToolInvocation{Tool: ToolSearchWeb, Args: map[string]any{}})

	assert.Equal(t, domain.KindInvalidArgument, out.Kind)
	assert.True(t, strings.HasPrefix(out.Text, formatter.ErrorPrefix))
	assert.Contains(t, out.Text, "query")
	assert.Equal(t, 0, search.callCount())
}

func TestDispatcher_WrongArgumentType(t *testing.T) {
	search := &mockSearchProvider{}
	d := newTestDispatcher(search, nil, DispatcherOptions{})

	out := d.Call(context.Background(), domain.ToolInvocation{
		Tool: ToolSearchWeb,
		Args: map[string]any{"query": "go", "num_results": "five"},
	})

	assert.Equal(t, domain.KindInvalidArgument, out.Kind)
	assert.Contains(t, out.Text, "num_results")
	assert.Equal(t, 0, search.callCount())
}

func TestDispatcher_NilArgsTreatedAsEmpty(t *testing.T) {
	search := &mockSearchProvider{}
	d := newTestDispatcher(search, nil, DispatcherOptions{})

	out := d.Call(context.Background(), domain.ToolInvocation{Tool: ToolSearchWeb})

	assert.Equal(t, domain.KindInvalidArgument, out.Kind)
	assert.Equal(t, 0, search.callCount())
}

func TestDispatcher_SearchRendersEveryResult(t *testing.T) {
	search := &mockSearchProvider{results: threeResults()}
	d := newTestDispatcher(search, nil, DispatcherOptions{})

	text := d.Invoke(context.Background(), ToolSearchWeb, map[string]any{"query": "rust ownership"})

	assert.Equal(t, 3, countBullets(text))
	for _, r := range threeResults() {
		assert.Contains(t, text, r.Title)
		assert.Contains(t, text, r.URL)
	}
	assert.Equal(t, 1, search.callCount())
	assert.Equal(t, "rust ownership", search.lastQuery().Query)
	assert.Equal(t, DefaultNumResults, search.lastQuery().NumResults)
}

func TestDispatcher_EmptyResults(t *testing.T) {
	d := newTestDispatcher(&mockSearchProvider{}, nil, DispatcherOptions{})

	out := d.Call(context.Background(), domain.ToolInvocation{
		Tool: ToolSearchWeb,
		Args: map[string]any{"query": "nothing matches"},
	})

	assert.False(t, out.Failed())
	assert.Equal(t, "No results found.", out.Text)
}

func TestDispatcher_Idempotent(t *testing.T) {
	d := newTestDispatcher(&mockSearchProvider{results: threeResults()}, nil, DispatcherOptions{})
	args := map[string]any{"query": "same", "num_results": float64(3)}

	first := d.Invoke(context.Background(), ToolSearchWeb, args)
	second := d.Invoke(context.Background(), ToolSearchWeb, args)

	assert.Equal(t, first, second)
}

func TestDispatcher_ArgsNotMutated(t *testing.T) {
	d := newTestDispatcher(&mockSearchProvider{}, nil, DispatcherOptions{})
	args := map[string]any{"query": "q"}

	d.Invoke(context.Background(), ToolSearchWeb, args)

	assert.Equal(t, map[string]any{"query": "q"}, args)
}

func TestDispatcher_AdvancedFiltersForwarded(t *testing.T) {
	search := &mockSearchProvider{results: threeResults()}
	d := newTestDispatcher(search, nil, DispatcherOptions{})

	out := d.Call(context.Background(), domain.ToolInvocation{
		Tool: ToolAdvancedSearchWeb,
		Args: map[string]any{
			"query":           "llm evals",
			"num_results":     float64(7),
			"include_domains": []any{"arxiv.org", "github.com"},
			"exclude_domains": []any{"reddit.com"},
			"include_text":    "benchmark",
			"max_age_days":    float64(30),
		},
	})
	require.False(t, out.Failed(), out.Text)

	q := search.lastQuery()
	assert.Equal(t, "llm evals", q.Query)
	assert.Equal(t, 7, q.NumResults)
	assert.Equal(t, []string{"arxiv.org", "github.com"}, q.IncludeDomains)
	assert.Equal(t, []string{"reddit.com"}, q.ExcludeDomains)
	assert.Equal(t, "benchmark", q.IncludeText)
	assert.Equal(t, 30, q.MaxAgeDays)
}

func TestDispatcher_RateLimited(t *testing.T) {
	search := &mockSearchProvider{err: fmt.Errorf("exa: %w (HTTP 429)", domain.ErrRateLimited)}
	d := newTestDispatcher(search, nil, DispatcherOptions{})

	out := d.Call(context.Background(), domain.ToolInvocation{
		Tool: ToolSearchWeb,
		Args: map[string]any{"query": "busy"},
	})

	assert.Equal(t, domain.KindRateLimited, out.Kind)
	assert.True(t, strings.HasPrefix(out.Text, formatter.ErrorPrefix))
	assert.Contains(t, strings.ToLower(out.Text), "rate limit")
}

func TestDispatcher_UpstreamErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind domain.ErrorKind
	}{
		{fmt.Errorf("exa: %w", domain.ErrUnauthorized), domain.KindUnauthorized},
		{fmt.Errorf("exa: %w: HTTP 502", domain.ErrUpstream), domain.KindUpstream},
		{fmt.Errorf("exa: %w", domain.ErrMissingCredential), domain.KindMissingCredential},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			d := newTestDispatcher(&mockSearchProvider{err: tt.err}, nil, DispatcherOptions{})
			out := d.Call(context.Background(), domain.ToolInvocation{
				Tool: ToolSearchWeb,
				Args: map[string]any{"query": "q"},
			})
			assert.Equal(t, tt.kind, out.Kind)
			assert.Contains(t, out.Text, tt.err.Error())
		})
	}
}

func TestDispatcher_StrictArguments(t *testing.T) {
	args := map[string]any{"query": "q", "colour": "blue"}

	t.Run("lenient drops unknown keys", func(t *testing.T) {
		search := &mockSearchProvider{}
		d := newTestDispatcher(search, nil, DispatcherOptions{})

		out := d.Call(context.Background(), domain.ToolInvocation{Tool: ToolSearchWeb, Args: args})

		assert.False(t, out.Failed(), out.Text)
		assert.Equal(t, 1, search.callCount())
	})

	t.Run("strict rejects unknown keys", func(t *testing.T) {
		search := &mockSearchProvider{}
		d := newTestDispatcher(search, nil, DispatcherOptions{StrictArguments: true})

		out := d.Call(context.Background(), domain.ToolInvocation{Tool: ToolSearchWeb, Args: args})

		assert.Equal(t, domain.KindInvalidArgument, out.Kind)
		assert.Contains(t, out.Text, "colour")
		assert.Equal(t, 0, search.callCount())
	})
}

func TestDispatcher_CallTimeout(t *testing.T) {
	search := &mockSearchProvider{block: true}
	d := newTestDispatcher(search, nil, DispatcherOptions{CallTimeout: 20 * time.Millisecond})

	out := d.Call(context.Background(), domain.ToolInvocation{
		Tool: ToolSearchWeb,
		Args: map[string]any{"query": "slow"},
	})

	assert.Equal(t, domain.KindTimeout, out.Kind)
	assert.True(t, strings.HasPrefix(out.Text, formatter.ErrorPrefix))
}

func TestDispatcher_CallerCancellation(t *testing.T) {
	search := &mockSearchProvider{block: true}
	d := newTestDispatcher(search, nil, DispatcherOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := d.Call(ctx, domain.ToolInvocation{Tool: ToolSearchWeb, Args: map[string]any{"query": "q"}})
	assert.Equal(t, domain.KindTimeout, out.Kind)
}

func TestDispatcher_HandlerPanic(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoDescriptor("boom"), func(context.Context, map[string]any) (domain.Payload, error) {
		panic("kaboom")
	}))
	d := NewDispatcher(r, DispatcherOptions{})

	out := d.Call(context.Background(), domain.ToolInvocation{Tool: "boom", Args: map[string]any{"text": "x"}})

	assert.Equal(t, domain.KindUpstream, out.Kind)
	assert.Contains(t, out.Text, "kaboom")
}

func TestDispatcher_NilPayload(t *testing.T) {
	d := newTestDispatcher(nil, &mockCrawler{}, DispatcherOptions{})

	out := d.Call(context.Background(), domain.ToolInvocation{
		Tool: ToolScrapeURL,
		Args: map[string]any{"url": "https://example.com"},
	})

	assert.Equal(t, domain.KindUpstream, out.Kind)
	assert.Contains(t, out.Text, "empty response")
}

func TestDispatcher_OutcomeEnvelope(t *testing.T) {
	d := newTestDispatcher(&mockSearchProvider{}, nil, DispatcherOptions{})
	d.newID = func() string { return "fixed-id" }

	out := d.Call(context.Background(), domain.ToolInvocation{Tool: ToolSearchWeb, Args: map[string]any{"query": "q"}})

	assert.Equal(t, "fixed-id", out.ID)
	assert.Equal(t, ToolSearchWeb, out.Tool)
	assert.Empty(t, out.Kind)
	assert.GreaterOrEqual(t, out.Duration, time.Duration(0))
}

func TestDispatcher_Concurrent(t *testing.T) {
	search := &mockSearchProvider{results: threeResults()}
	d := newTestDispatcher(search, nil, DispatcherOptions{})

	var wg sync.WaitGroup
	texts := make([]string, 16)
	for i := range texts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			texts[i] = d.Invoke(context.Background(), ToolSearchWeb, map[string]any{"query": "q"})
		}(i)
	}
	wg.Wait()

	for _, text := range texts {
		assert.Equal(t, texts[0], text)
	}
	assert.Equal(t, len(texts), search.callCount())
}
