package domain

import "time"

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	// ParamString is a JSON string.
	ParamString ParamType = "string"

	// ParamInteger is a JSON number without a fractional part.
	ParamInteger ParamType = "integer"

	// ParamNumber is any JSON number.
	ParamNumber ParamType = "number"

	// ParamBoolean is a JSON boolean.
	ParamBoolean ParamType = "boolean"

	// ParamArray is a JSON array. Param.Items holds the element type.
	ParamArray ParamType = "array"

	// ParamObject is a free-form JSON object.
	ParamObject ParamType = "object"
)

// Valid reports whether t is one of the supported parameter types.
func (t ParamType) Valid() bool {
	switch t {
	case ParamString, ParamInteger, ParamNumber, ParamBoolean, ParamArray, ParamObject:
		return true
	default:
		return false
	}
}

// Param declares a single tool parameter.
type Param struct {
	// Name is the argument key the client must use.
	Name string

	// Type is the JSON type of the value.
	Type ParamType

	// Items is the element type for array parameters.
	Items ParamType

	// Description is shown to the language model.
	Description string

	// Required marks the parameter as mandatory.
	Required bool

	// Default is applied when an optional parameter is omitted.
	// Nil means the parameter is simply absent.
	Default any
}

// ToolDescriptor describes a tool exposed to the calling client.
// Descriptors are created at start-up and never mutated afterwards.
type ToolDescriptor struct {
	// Name uniquely identifies the tool within a registry.
	Name string

	// Description is consumed by the language model for tool selection.
	Description string

	// Params is the ordered parameter list.
	Params []Param
}

// Param returns the declared parameter with the given name.
func (d ToolDescriptor) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ToolInvocation is a single incoming tool call.
type ToolInvocation struct {
	// Tool is the requested tool name.
	Tool string

	// Args maps argument names to decoded JSON values.
	Args map[string]any
}

// ToolOutcome is the structured result of dispatching a ToolInvocation.
// Text is always set, including on failure.
type ToolOutcome struct {
	// ID correlates log lines for this invocation.
	ID string

	// Tool is the requested tool name.
	Tool string

	// Text is the markdown answer or the user-facing error message.
	Text string

	// Kind is empty on success and classifies the failure otherwise.
	Kind ErrorKind

	// Duration is the wall time spent dispatching.
	Duration time.Duration
}

// Failed reports whether the invocation produced an error message.
func (o ToolOutcome) Failed() bool {
	return o.Kind != ""
}
