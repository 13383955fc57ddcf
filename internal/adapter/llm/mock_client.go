package llm

import (
	"context"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

// MockClient is a scriptable implementation of ModelClient for testing.
type MockClient struct {
	// Replies are returned by Complete in order; the last one repeats.
	Replies []*Reply
	// VisionContent is returned by CompleteVision.
	VisionContent string
	// PromptContent is returned by CompletePrompt.
	PromptContent string
	// Err, when set, fails every call.
	Err error

	// Recorded inputs from the most recent calls.
	LastTurns        []domain.Turn
	LastTools        []domain.ToolSchema
	LastVisionText   string
	LastVisionImages []domain.ImagePayload
	LastPrompt       string

	completeCalls int
	VisionCalls   int
}

// Ensure MockClient implements ModelClient.
var _ ModelClient = (*MockClient)(nil)

// Complete returns the next scripted reply.
func (m *MockClient) Complete(ctx context.Context, turns []domain.Turn, tools []domain.ToolSchema) (*Reply, error) {
	m.LastTurns = turns
	m.LastTools = tools
	if m.Err != nil {
		return nil, m.Err
	}

	index := m.completeCalls
	if index >= len(m.Replies) {
		index = len(m.Replies) - 1
	}
	m.completeCalls++
	if index < 0 {
		return &Reply{Content: "mock reply"}, nil
	}
	return m.Replies[index], nil
}

// CompleteVision returns the scripted vision content.
func (m *MockClient) CompleteVision(ctx context.Context, text string, images []domain.ImagePayload) (string, error) {
	m.VisionCalls++
	m.LastVisionText = text
	m.LastVisionImages = images
	if m.Err != nil {
		return "", m.Err
	}
	return m.VisionContent, nil
}

// CompletePrompt returns the scripted prompt content.
func (m *MockClient) CompletePrompt(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m.LastPrompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.PromptContent, nil
}
