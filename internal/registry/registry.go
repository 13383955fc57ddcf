// Package registry maps capability names to callable tools and their
// schemas. Dispatch is a map lookup plus typed argument binding; there
// is no reflection anywhere.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

// ErrUnknownCapability is returned when the model requests a name that
// was never registered. It indicates a schema/registry mismatch and is
// a programming defect, not a user error.
var ErrUnknownCapability = errors.New("unknown capability")

// Capability is one callable tool. Arguments arrive already bound:
// defaults applied, required names verified, user identity injected.
type Capability func(ctx context.Context, args map[string]any) (domain.Result, error)

type entry struct {
	schema domain.ToolSchema
	call   Capability
}

// Registry is the static name -> capability mapping. It is populated
// once at startup and read-only afterwards.
type Registry struct {
	entries map[string]entry
	order   []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a capability under its schema name.
func (r *Registry) Register(schema domain.ToolSchema, call Capability) error {
	if schema.Name == "" {
		return errors.New("capability schema has no name")
	}
	if _, exists := r.entries[schema.Name]; exists {
		return fmt.Errorf("capability %q already registered", schema.Name)
	}
	r.entries[schema.Name] = entry{schema: schema, call: call}
	r.order = append(r.order, schema.Name)
	return nil
}

// Schemas returns all registered schemas in registration order. This
// is what the model backend sees.
func (r *Registry) Schemas() []domain.ToolSchema {
	schemas := make([]domain.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.entries[name].schema)
	}
	return schemas
}

// Dispatch binds rawArgs against the named capability's schema and
// invokes it. The capability's raw return value is passed through
// unmodified.
func (r *Registry) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage, userID string) (domain.Result, error) {
	target, ok := r.entries[name]
	if !ok {
		return domain.Result{}, fmt.Errorf("%w: %s", ErrUnknownCapability, name)
	}

	args, err := bind(target.schema, rawArgs, userID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to bind arguments for %s: %w", name, err)
	}

	return target.call(ctx, args)
}

// bind decodes the model-supplied JSON object, fills in declared
// defaults for absent parameters, verifies required names, and injects
// the caller identity into the schema's user parameter.
func bind(schema domain.ToolSchema, rawArgs json.RawMessage, userID string) (map[string]any, error) {
	args := map[string]any{}
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
		}
	}

	if schema.Parameters != nil {
		for name, prop := range schema.Parameters.Properties {
			if _, present := args[name]; !present && prop.Default != nil {
				args[name] = prop.Default
			}
		}
		for _, name := range schema.Parameters.Required {
			if _, present := args[name]; !present {
				return nil, fmt.Errorf("missing required argument %q", name)
			}
		}
	}

	// The model never supplies the caller's identity scope; it is
	// always taken from the authenticated request.
	if schema.UserParam != "" {
		args[schema.UserParam] = userID
	}

	return args, nil
}

// StringArg reads a string argument, returning fallback when absent or
// of the wrong type.
func StringArg(args map[string]any, name, fallback string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return fallback
}

// IntArg reads an integer argument. JSON numbers decode as float64, so
// both representations are accepted.
func IntArg(args map[string]any, name string, fallback int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

// BoolArg reads a boolean argument.
func BoolArg(args map[string]any, name string, fallback bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return fallback
}
