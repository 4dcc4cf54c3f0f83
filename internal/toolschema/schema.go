// Package toolschema turns tool descriptors into JSON schemas and checks
// incoming arguments against them.
//
// The same schema is published to MCP hosts and used to validate calls,
// so what the language model is told and what the dispatcher enforces
// never drift apart.
package toolschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"

	"github.com/custodia-labs/webrelay/internal/core/domain"
)

// Schema returns the JSON schema describing desc's arguments.
func Schema(desc domain.ToolDescriptor) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(desc.Params)),
	}

	for _, p := range desc.Params {
		prop := &jsonschema.Schema{
			Type:        string(p.Type),
			Description: p.Description,
		}
		if p.Type == domain.ParamArray {
			items := p.Items
			if items == "" {
				items = domain.ParamString
			}
			prop.Items = &jsonschema.Schema{Type: string(items)}
		}
		if p.Default != nil {
			if raw, err := json.Marshal(p.Default); err == nil {
				prop.Default = raw
			}
		}
		s.Properties[p.Name] = prop

		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}

	return s
}

// Validator checks arguments for a single tool.
// It is immutable after Compile and safe for concurrent use.
type Validator struct {
	desc   domain.ToolDescriptor
	schema *gojsonschema.Schema
}

// Compile builds a Validator for desc.
func Compile(desc domain.ToolDescriptor) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(Schema(desc)))
	if err != nil {
		return nil, fmt.Errorf("compiling schema for %s: %w", desc.Name, err)
	}
	return &Validator{desc: desc, schema: compiled}, nil
}

// Prepare returns a validated copy of args with defaults applied.
// Explicit nulls count as omitted. Keys the tool does not declare are
// rejected when strict is set and dropped otherwise.
// Every failure wraps domain.ErrInvalidArgument.
func (v *Validator) Prepare(args map[string]any, strict bool) (map[string]any, error) {
	prepared := make(map[string]any, len(v.desc.Params))

	var unknown []string
	for key, val := range args {
		if _, ok := v.desc.Param(key); !ok {
			unknown = append(unknown, key)
			continue
		}
		if val != nil {
			prepared[key] = val
		}
	}
	if strict && len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown argument(s): %s", domain.ErrInvalidArgument, strings.Join(unknown, ", "))
	}

	for _, p := range v.desc.Params {
		if _, ok := prepared[p.Name]; !ok && p.Default != nil {
			prepared[p.Name] = p.Default
		}
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(prepared))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			msgs = append(msgs, describe(re))
		}
		sort.Strings(msgs)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, strings.Join(msgs, "; "))
	}

	return prepared, nil
}

// describe renders a gojsonschema error without the "(root)" noise.
func describe(re gojsonschema.ResultError) string {
	if re.Field() == gojsonschema.STRING_CONTEXT_ROOT {
		return re.Description()
	}
	return re.Field() + ": " + re.Description()
}

// Decode copies validated args into the parameter struct pointed to by out.
// Fields are matched through `mapstructure` tags.
func Decode(args map[string]any, out any) error {
	if out == nil {
		return errors.New("toolschema: nil decode target")
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}
