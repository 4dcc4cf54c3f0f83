package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/webrelay/internal/adapters/driven/config"
	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/core/ports/driving"
)

type mockDispatcher struct {
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
	m.calls = append(m.calls, inv)
	return m.outcome
}

func testTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		{
			Name:        "search_web",
			Description: "Search the web.\nSecond line.",
			Params: []domain.Param{
				{Name: "query", Type: domain.ParamString, Description: "Search query", Required: true},
				{Name: "num_results", Type: domain.ParamInteger, Description: "Result count", Default: 5},
				{Name: "include_domains", Type: domain.ParamArray, Items: domain.ParamString, Description: "Domains"},
			},
		},
	}
}

// useDispatcher swaps the dispatcher factory for the duration of the test.
func useDispatcher(t *testing.T, d driving.ToolDispatcher, err error) {
	t.Helper()
	original := newDispatcher
	newDispatcher = func() (driving.ToolDispatcher, error) { return d, err }
	t.Cleanup(func() { newDispatcher = original })
}

// useConfig swaps the config loader for the duration of the test.
func useConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	original := loadConfig
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	t.Cleanup(func() { loadConfig = original })
}

// executeCommand runs the root command with args and returns its output.
// Package-level flag values are reset first since cobra keeps them between runs.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, configFile, envFile = false, "", ""
	toolsListJSON, toolsCallArgs, toolsCallJSON = false, nil, ""
	configShowReveal, configInitForce = false, false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
