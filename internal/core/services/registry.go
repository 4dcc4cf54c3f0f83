package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/toolschema"
)

// Handler fetches the payload for one invocation.
// args has already been validated against the tool's schema and carries
// defaults for omitted optional parameters.
type Handler func(ctx context.Context, args map[string]any) (domain.Payload, error)

// Typed adapts a handler that takes an explicit parameter struct.
// Decoding happens before fn runs, so fn never sees malformed input.
func Typed[P any](fn func(ctx context.Context, params P) (domain.Payload, error)) Handler {
	return func(ctx context.Context, args map[string]any) (domain.Payload, error) {
		var params P
		if err := toolschema.Decode(args, &params); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		return fn(ctx, params)
	}
}

// Entry is a registered tool.
type Entry struct {
	Descriptor domain.ToolDescriptor
	Handler    Handler

	validator *toolschema.Validator
}

// Registry maps tool names to handlers and descriptors.
// It is populated during start-up and sealed when the dispatcher is built;
// after that it is read-only and safe for concurrent lookups.
type Registry struct {
	entries map[string]*Entry
	order   []string
	sealed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(desc domain.ToolDescriptor, handler Handler) error {
	if r.sealed {
		return fmt.Errorf("registering %s: %w", desc.Name, domain.ErrRegistrySealed)
	}
	if err := validateDescriptor(desc); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: %s has no handler", domain.ErrInvalidDescriptor, desc.Name)
	}
	if _, exists := r.entries[desc.Name]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateTool, desc.Name)
	}

	validator, err := toolschema.Compile(desc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDescriptor, err)
	}

	r.entries[desc.Name] = &Entry{
		Descriptor: desc,
		Handler:    handler,
		validator:  validator,
	}
	r.order = append(r.order, desc.Name)
	return nil
}

// Resolve returns the entry registered under name.
func (r *Registry) Resolve(name string) (*Entry, error) {
	entry, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTool, name)
	}
	return entry, nil
}

// Descriptors returns all tool descriptors in registration order.
func (r *Registry) Descriptors() []domain.ToolDescriptor {
	out := make([]domain.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].Descriptor)
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// Seal forbids further registrations.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed
}

func validateDescriptor(desc domain.ToolDescriptor) error {
	if strings.TrimSpace(desc.Name) == "" {
		return fmt.Errorf("%w: tool name cannot be empty", domain.ErrInvalidDescriptor)
	}
	if strings.TrimSpace(desc.Description) == "" {
		return fmt.Errorf("%w: %s has no description", domain.ErrInvalidDescriptor, desc.Name)
	}

	seen := make(map[string]bool, len(desc.Params))
	for _, p := range desc.Params {
		if p.Name == "" {
			return fmt.Errorf("%w: %s has a parameter without a name", domain.ErrInvalidDescriptor, desc.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: %s declares %s twice", domain.ErrInvalidDescriptor, desc.Name, p.Name)
		}
		seen[p.Name] = true

		if !p.Type.Valid() {
			return fmt.Errorf("%w: invalid type %q for %s.%s", domain.ErrInvalidDescriptor, p.Type, desc.Name, p.Name)
		}
		if p.Type == domain.ParamArray && p.Items != "" && !p.Items.Valid() {
			return fmt.Errorf("%w: invalid item type %q for %s.%s", domain.ErrInvalidDescriptor, p.Items, desc.Name, p.Name)
		}
		if p.Required && p.Default != nil {
			return fmt.Errorf("%w: required parameter %s.%s cannot have a default", domain.ErrInvalidDescriptor, desc.Name, p.Name)
		}
	}
	return nil
}
