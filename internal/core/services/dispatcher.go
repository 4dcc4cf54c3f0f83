package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/webrelay/internal/core/domain"
	"github.com/custodia-labs/webrelay/internal/core/formatter"
	"github.com/custodia-labs/webrelay/internal/core/ports/driving"
	"github.com/custodia-labs/webrelay/internal/logger"
)

// Ensure Dispatcher implements the interface.
var _ driving.ToolDispatcher = (*Dispatcher)(nil)

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	// StrictArguments rejects argument keys a tool does not declare.
	// When false they are silently dropped.
	StrictArguments bool

	// CallTimeout bounds each invocation. Zero means only the caller's
	// context applies.
	CallTimeout time.Duration
}

// Dispatcher resolves tool calls against a sealed Registry.
type Dispatcher struct {
	registry *Registry
	opts     DispatcherOptions
	newID    func() string
}

// NewDispatcher seals registry and returns a dispatcher serving it.
func NewDispatcher(registry *Registry, opts DispatcherOptions) *Dispatcher {
	registry.Seal()
	return &Dispatcher{
		registry: registry,
		opts:     opts,
		newID:    uuid.NewString,
	}
}

// Tools returns the registered tool descriptors.
func (d *Dispatcher) Tools() []domain.ToolDescriptor {
	return d.registry.Descriptors()
}

// Invoke runs a tool and returns its text.
func (d *Dispatcher) Invoke(ctx context.Context, tool string, args map[string]any) string {
	return d.Call(ctx, domain.ToolInvocation{Tool: tool, Args: args}).Text
}

// Call runs a tool and returns its text with a structured envelope.
func (d *Dispatcher) Call(ctx context.Context, inv domain.ToolInvocation) domain.ToolOutcome {
	start := time.Now()
	out := domain.ToolOutcome{ID: d.newID(), Tool: inv.Tool}

	text, err := d.dispatch(ctx, inv)
	out.Duration = time.Since(start)

	log := logger.Component("dispatcher")
	if err != nil {
		out.Kind = domain.KindOf(err)
		out.Text = formatter.Error(err)
		log.Warn().
			Str("id", out.ID).
			Str("tool", inv.Tool).
			Str("kind", string(out.Kind)).
			Dur("duration", out.Duration).
			Err(err).
			Msg("tool call failed")
		return out
	}

	out.Text = text
	log.Debug().
		Str("id", out.ID).
		Str("tool", inv.Tool).
		Dur("duration", out.Duration).
		Int("bytes", len(text)).
		Msg("tool call completed")
	return out
}

func (d *Dispatcher) dispatch(ctx context.Context, inv domain.ToolInvocation) (string, error) {
	entry, err := d.registry.Resolve(inv.Tool)
	if err != nil {
		return "", err
	}

	args, err := entry.validator.Prepare(inv.Args, d.opts.StrictArguments)
	if err != nil {
		return "", fmt.Errorf("%s: %w", inv.Tool, err)
	}

	if d.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.CallTimeout)
		defer cancel()
	}

	payload, err := run(ctx, entry.Handler, args)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, domain.ErrTimeout) {
			err = fmt.Errorf("%w: %w", domain.ErrTimeout, err)
		}
		return "", fmt.Errorf("%s: %w", inv.Tool, err)
	}

	text, err := formatter.Render(payload)
	if err != nil {
		return "", fmt.Errorf("%s: %w", inv.Tool, err)
	}
	return text, nil
}

// run calls h, converting a panic into an upstream error.
func run(ctx context.Context, h Handler, args map[string]any) (payload domain.Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: handler panic: %v", domain.ErrUpstream, r)
		}
	}()
	return h(ctx, args)
}
