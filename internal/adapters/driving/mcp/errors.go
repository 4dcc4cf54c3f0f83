// Package mcp provides an MCP (Model Context Protocol) server adapter for webrelay.
// It exposes every registered tool to AI assistants and answers each call with text.
package mcp

import "errors"

// ErrMissingDispatcher is returned when the tool dispatcher is not provided.
var ErrMissingDispatcher = errors.New("mcp: tool dispatcher is required")
