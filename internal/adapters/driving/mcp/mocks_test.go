package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/webrelay/internal/core/domain"
)

type mockDispatcher struct {
	mu      sync.Mutex
	tools   []domain.ToolDescriptor
	outcome domain.ToolOutcome
	calls   []domain.ToolInvocation
}

func (m *mockDispatcher) Tools() []domain.ToolDescriptor {
	return m.tools
}

func (m *mockDispatcher) Invoke(ctx context.Context, tool string, args map[string]any) string {
	return m.Call(ctx, domain.ToolInvocation{Tool: tool, Args: args}).Text
}

func (m *mockDispatcher) Call(_ context.Context, inv domain.ToolInvocation) domain.ToolOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, inv)
	out := m.outcome
	out.Tool = inv.Tool
	return out
}

func (m *mockDispatcher) lastCall() domain.ToolInvocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return domain.ToolInvocation{}
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockDispatcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func testTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		{
			Name:        "search_web",
			Description: "Search the web",
			Params: []domain.Param{
				{Name: "query", Type: domain.ParamString, Description: "Search query", Required: true},
				{Name: "num_results", Type: domain.ParamInteger, Description: "Result count", Default: 5},
			},
		},
		{
			Name:        "scrape_url",
			Description: "Scrape a page",
			Params: []domain.Param{
				{Name: "url", Type: domain.ParamString, Description: "Page URL", Required: true},
			},
		},
	}
}
