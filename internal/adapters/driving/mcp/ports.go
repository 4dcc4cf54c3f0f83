package mcp

import (
	"github.com/custodia-labs/webrelay/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Dispatcher resolves and runs tool calls.
	Dispatcher driving.ToolDispatcher
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Dispatcher == nil {
		return ErrMissingDispatcher
	}
	return nil
}
