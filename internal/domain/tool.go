package domain

// Property describes one named argument in a tool schema.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Parameters is the JSON-Schema-like object describing a capability's
// arguments.
type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// ToolSchema declares one capability to the model backend. Schemas are
// loaded once at process start and immutable thereafter.
//
// UserParam names the parameter that carries the caller's identity
// scope (the vhost in the original deployment). It is never exposed to
// the model; the registry fills it in at dispatch time.
type ToolSchema struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  *Parameters `json:"parameters,omitempty"`
	UserParam   string      `json:"-"`
}
