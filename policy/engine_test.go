package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyAllows(t *testing.T) {
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)

	decision, err := engine.Evaluate(context.Background(), map[string]any{
		"tool_name": "get_queue_status",
		"user_id":   "aqila",
		"args":      map[string]any{"queue_name": "sync"},
	})
	require.NoError(t, err)
	assert.Equal(t, "allow", decision)
}

func TestDefaultPolicyBlocksOversizedResend(t *testing.T) {
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)

	decision, err := engine.Evaluate(context.Background(), map[string]any{
		"tool_name": "resend_to_queue",
		"user_id":   "aqila",
		"args":      map[string]any{"queue_name": "sync", "limit": 1000},
	})
	require.NoError(t, err)
	assert.Equal(t, "block", decision)
}

func TestDefaultPolicyAllowsSmallResend(t *testing.T) {
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)

	decision, err := engine.Evaluate(context.Background(), map[string]any{
		"tool_name": "resend_to_queue",
		"args":      map[string]any{"limit": 50},
	})
	require.NoError(t, err)
	assert.Equal(t, "allow", decision)
}
