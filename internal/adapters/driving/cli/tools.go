package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/core/ports/driving"
)

// ErrToolFailed is returned by tools call when the tool answered with an error.
var ErrToolFailed = errors.New("tool call failed")

var (
	toolsListJSON bool
	toolsCallArgs []string
	toolsCallJSON string
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect and invoke tools",
	Long:  `List the tools exposed over MCP, or invoke one directly from the shell.`,
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tools",
	Args:  cobra.NoArgs,
	RunE:  runToolsList,
}

var toolsCallCmd = &cobra.Command{
	Use:   "call [tool]",
	Short: "Invoke a tool and print its answer",
	Long: `Invoke a tool through the same dispatcher the MCP server uses.

Arguments are given as --arg key=value (values are parsed as JSON, falling
back to a plain string) and/or a JSON object with --json. --arg wins on
conflicts.

Examples:
  webrelay tools call search_web --arg query="rust ownership" --arg num_results=3
  webrelay tools call advanced_search_web --json '{"query":"llm evals","include_domains":["arxiv.org"]}'`,
	Args: cobra.ExactArgs(1),
	RunE: runToolsCall,
}

func init() {
	toolsListCmd.Flags().BoolVar(&toolsListJSON, "json", false, "output tools as JSON")
	toolsCallCmd.Flags().StringArrayVar(&toolsCallArgs, "arg", nil, "argument as key=value (repeatable)")
	toolsCallCmd.Flags().StringVar(&toolsCallJSON, "json", "", "arguments as a JSON object")
	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsCallCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	dispatcher, err := newDispatcher()
	if err != nil {
		return err
	}

	tools := dispatcher.Tools()
	if toolsListJSON {
		return outputToolsJSON(cmd, tools)
	}

	outputToolsTable(cmd, tools, newListStyles(isTerminal(cmd.OutOrStdout())))
	return nil
}

type toolJSON struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []paramJSON `json:"params"`
}

type paramJSON struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description"`
}

func outputToolsJSON(cmd *cobra.Command, tools []domain.ToolDescriptor) error {
	out := make([]toolJSON, len(tools))
	for i, t := range tools {
		out[i] = toolJSON{Name: t.Name, Description: t.Description, Params: make([]paramJSON, len(t.Params))}
		for j, p := range t.Params {
			out[i].Params[j] = paramJSON{
				Name:        p.Name,
				Type:        paramType(p),
				Required:    p.Required,
				Default:     p.Default,
				Description: p.Description,
			}
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tools: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// listStyles renders the tool table. The zero value prints plain text.
type listStyles struct {
	name  lipgloss.Style
	param lipgloss.Style
	muted lipgloss.Style
}

func newListStyles(styled bool) listStyles {
	if !styled {
		return listStyles{}
	}
	return listStyles{
		name:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		param: lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

func outputToolsTable(cmd *cobra.Command, tools []domain.ToolDescriptor, styles listStyles) {
	if len(tools) == 0 {
		cmd.Println("No tools registered.")
		return
	}

	for i, t := range tools {
		if i > 0 {
			cmd.Println()
		}
		cmd.Println(styles.name.Render(t.Name))
		cmd.Printf("  %s\n", firstLine(t.Description))
		for _, p := range t.Params {
			cmd.Printf("    %s %s %s\n",
				styles.param.Render(p.Name),
				styles.muted.Render("("+paramSummary(p)+")"),
				p.Description,
			)
		}
	}
}

func paramType(p domain.Param) string {
	if p.Type == domain.ParamArray {
		items := p.Items
		if items == "" {
			items = domain.ParamString
		}
		return fmt.Sprintf("array<%s>", items)
	}
	return string(p.Type)
}

func paramSummary(p domain.Param) string {
	parts := []string{paramType(p)}
	if p.Required {
		parts = append(parts, "required")
	}
	if p.Default != nil {
		parts = append(parts, fmt.Sprintf("default %v", p.Default))
	}
	return strings.Join(parts, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runToolsCall(cmd *cobra.Command, args []string) error {
	name := args[0]

	callArgs, err := parseCallArgs(toolsCallJSON, toolsCallArgs)
	if err != nil {
		return err
	}

	dispatcher, err := newDispatcher()
	if err != nil {
		return err
	}

	return callTool(cmd, dispatcher, name, callArgs)
}

func callTool(cmd *cobra.Command, dispatcher driving.ToolDispatcher, name string, args map[string]any) error {
	out := dispatcher.Call(cmd.Context(), domain.ToolInvocation{Tool: name, Args: args})
	cmd.Println(out.Text)
	if out.Failed() {
		return fmt.Errorf("%w: %s", ErrToolFailed, out.Kind)
	}
	return nil
}

// parseCallArgs merges a JSON object with key=value pairs.
// Values that are not valid JSON are taken as strings.
func parseCallArgs(raw string, pairs []string) (map[string]any, error) {
	args := make(map[string]any)

	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return nil, fmt.Errorf("--json must be a JSON object: %w", err)
		}
		if args == nil {
			args = make(map[string]any)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--arg %q: expected key=value", pair)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}
		args[key] = decoded
	}

	return args, nil
}
