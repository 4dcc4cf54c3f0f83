// Package domain defines the core business entities for webrelay.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ToolDescriptor: A named, schema-described tool
//   - ToolInvocation / ToolOutcome: One tool call and its text answer
//   - SearchResult: A single web search hit
//   - Payload: Raw structured tool output awaiting formatting
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
