package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/core/formatter"
	"github.com/custodia-labs/webrelay/internal/toolschema"
)

// Result metadata keys.
const (
	metaErrorKind    = "webrelay/error_kind"
	metaInvocationID = "webrelay/invocation_id"
)

// registerTools publishes every dispatcher tool with its argument schema.
func (s *Server) registerTools() {
	for _, desc := range s.ports.Dispatcher.Tools() {
		s.server.AddTool(&mcp.Tool{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: toolschema.Schema(desc),
		}, s.toolHandler(desc.Name))
	}
}

// toolHandler returns the handler for a single tool.
// Failures are reported in the result text, never as protocol errors.
func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}

		args, err := decodeArguments(raw)
		if err != nil {
			return errorResult(fmt.Errorf("%s: %w", name, err)), nil
		}

		out := s.ports.Dispatcher.Call(ctx, domain.ToolInvocation{Tool: name, Args: args})
		return toResult(out), nil
	}
}

// decodeArguments turns raw call arguments into a map.
// Absent or null arguments decode to nil.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: arguments must be a JSON object", domain.ErrInvalidArgument)
	}
	return args, nil
}

func toResult(out domain.ToolOutcome) *mcp.CallToolResult {
	res := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: out.Text}},
		IsError: out.Failed(),
		Meta:    mcp.Meta{},
	}
	if out.ID != "" {
		res.Meta[metaInvocationID] = out.ID
	}
	if out.Failed() {
		res.Meta[metaErrorKind] = string(out.Kind)
	}
	return res
}

func errorResult(err error) *mcp.CallToolResult {
	return toResult(domain.ToolOutcome{
		Text: formatter.Error(err),
		Kind: domain.KindOf(err),
	})
}
