package driving

import (
	"context"

	"github.com/custodia-labs/webrelay/internal/core/domain"
)

// ToolDispatcher resolves tool calls and always answers with text.
type ToolDispatcher interface {
	// Tools returns the registered tool descriptors in registration order.
	Tools() []domain.ToolDescriptor

	// Invoke runs a tool and returns its markdown answer or an error message.
	// It never fails; errors are rendered as "An error occurred: ..." text.
	Invoke(ctx context.Context, tool string, args map[string]any) string

	// Call is Invoke with a structured envelope around the text.
	Call(ctx context.Context, inv domain.ToolInvocation) domain.ToolOutcome
}
