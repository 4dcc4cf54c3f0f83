package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/toolschema"
)

const (
	// uriScheme is the custom URI scheme for webrelay resources.
	uriScheme = "webrelay://"
)

// toolInfo is the JSON shape of a catalogue entry.
type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"input_schema"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tools",
		Name:        "tools",
		Description: "Catalogue of the tools this server exposes",
		MIMEType:    "application/json",
	}, s.handleToolsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tools/{name}",
		Name:        "tool",
		Description: "Description and argument schema of a single tool",
		MIMEType:    "application/json",
	}, s.handleToolResource)
}

// handleToolsResource returns every registered tool.
func (s *Server) handleToolsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tools := s.ports.Dispatcher.Tools()
	infos := make([]toolInfo, len(tools))
	for i, desc := range tools {
		infos[i] = newToolInfo(desc)
	}
	return jsonResource(req.Params.URI, infos)
}

// handleToolResource returns a single tool by name.
func (s *Server) handleToolResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractToolName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	for _, desc := range s.ports.Dispatcher.Tools() {
		if desc.Name == name {
			return jsonResource(req.Params.URI, newToolInfo(desc))
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func newToolInfo(desc domain.ToolDescriptor) toolInfo {
	return toolInfo{
		Name:        desc.Name,
		Description: desc.Description,
		InputSchema: toolschema.Schema(desc),
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling tools: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractToolName extracts the tool name from a URI like webrelay://tools/{name}.
func extractToolName(uri string) string {
	const prefix = uriScheme + "tools/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
