// Package llm provides the model backend client used by the engine.
package llm

import (
	"context"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

// Reply is the model backend's answer to a completion request. At most
// one of Content / Invocation is meaningfully set.
type Reply struct {
	Content    string
	Invocation *domain.ToolInvocation
}

// ModelClient defines the model backend operations the engine needs.
type ModelClient interface {
	// Complete sends the budgeted conversation plus the capability
	// schemas; the model may answer directly or request a tool call.
	Complete(ctx context.Context, turns []domain.Turn, tools []domain.ToolSchema) (*Reply, error)

	// CompleteVision sends a single-turn multimodal request. Vision
	// requests never carry prior history.
	CompleteVision(ctx context.Context, text string, images []domain.ImagePayload) (string, error)

	// CompletePrompt sends one standalone prompt, used by capabilities
	// that do their own model calls.
	CompletePrompt(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Ensure Client implements ModelClient.
var _ ModelClient = (*Client)(nil)
