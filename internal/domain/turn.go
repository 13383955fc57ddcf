// Package domain defines the core domain models for the chatbot engine.
package domain

import (
	"encoding/json"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ToolInvocation is a model-requested capability call.
type ToolInvocation struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Turn is a single message in a conversation. Turns are immutable once
// appended; the session store may only evict them.
type Turn struct {
	TurnID     string          `json:"turn_id"`
	Role       Role            `json:"role"`
	Content    string          `json:"content,omitempty"`
	Invocation *ToolInvocation `json:"tool_invocation,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
