package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

func newTestStore(t *testing.T) *TranscriptStore {
	t.Helper()
	store, err := NewTranscriptStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndCountTurns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordTurn(ctx, "u1", domain.Turn{
		TurnID:    "t1",
		Role:      domain.RoleUser,
		Content:   "oi",
		CreatedAt: time.Now(),
	}))
	require.NoError(t, store.RecordTurn(ctx, "u1", domain.Turn{
		TurnID:    "t2",
		Role:      domain.RoleAssistant,
		Content:   "olá",
		CreatedAt: time.Now(),
	}))

	count, err := store.TurnCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.TurnCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRecentTurnsKeepsToolInvocation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordTurn(ctx, "u1", domain.Turn{
		TurnID:  "t1",
		Role:    domain.RoleAssistant,
		Content: "Ferramenta get_queue_status executada",
		Invocation: &domain.ToolInvocation{
			Name:      "get_queue_status",
			Arguments: json.RawMessage(`{"queue_name":"sync"}`),
		},
		ToolName:  "get_queue_status",
		CreatedAt: time.Now(),
	}))

	turns, err := store.RecentTurns(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "get_queue_status", turns[0].ToolName)
	require.NotNil(t, turns[0].Invocation)
	assert.JSONEq(t, `{"queue_name":"sync"}`, string(turns[0].Invocation.Arguments))
}
