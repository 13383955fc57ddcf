package registry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

func queueSchema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        "get_queue_status",
		Description: "Get the status of a queue",
		Parameters: &domain.Parameters{
			Type: "object",
			Properties: map[string]domain.Property{
				"queue_name":       {Type: "string"},
				"without_messages": {Type: "boolean", Default: false},
			},
		},
		UserParam: "vhost",
	}
}

func TestDispatchPassesResultThroughUnmodified(t *testing.T) {
	reg := New()
	table := &domain.Table{
		Columns: []string{"gpa_code", "collection", "qtde"},
		Rows:    [][]string{{"8504", "produtos", "12"}},
	}
	require.NoError(t, reg.Register(queueSchema(), func(ctx context.Context, args map[string]any) (domain.Result, error) {
		return domain.TableResult(table), nil
	}))

	result, err := reg.Dispatch(context.Background(), "get_queue_status", json.RawMessage(`{"queue_name":"sync"}`), "aqila")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultKindTable, result.Kind)
	assert.Same(t, table, result.Table)
}

func TestDispatchUnknownCapability(t *testing.T) {
	reg := New()
	_, err := reg.Dispatch(context.Background(), "no_such_tool", nil, "aqila")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCapability)
}

func TestDispatchBindsDefaultsAndInjectsUser(t *testing.T) {
	reg := New()
	var seen map[string]any
	require.NoError(t, reg.Register(queueSchema(), func(ctx context.Context, args map[string]any) (domain.Result, error) {
		seen = args
		return domain.TextResult("ok"), nil
	}))

	_, err := reg.Dispatch(context.Background(), "get_queue_status", json.RawMessage(`{"queue_name":"sync"}`), "aqila-hml")
	require.NoError(t, err)

	assert.Equal(t, "sync", seen["queue_name"])
	assert.Equal(t, false, seen["without_messages"])
	assert.Equal(t, "aqila-hml", seen["vhost"])
}

func TestDispatchUserParamOverridesModelValue(t *testing.T) {
	reg := New()
	var seen map[string]any
	require.NoError(t, reg.Register(queueSchema(), func(ctx context.Context, args map[string]any) (domain.Result, error) {
		seen = args
		return domain.TextResult("ok"), nil
	}))

	_, err := reg.Dispatch(context.Background(), "get_queue_status", json.RawMessage(`{"vhost":"forged"}`), "aqila")
	require.NoError(t, err)
	assert.Equal(t, "aqila", seen["vhost"])
}

func TestDispatchMissingRequiredArgument(t *testing.T) {
	reg := New()
	schema := domain.ToolSchema{
		Name: "search_documents",
		Parameters: &domain.Parameters{
			Type:       "object",
			Properties: map[string]domain.Property{"search_term": {Type: "string"}},
			Required:   []string{"search_term"},
		},
	}
	require.NoError(t, reg.Register(schema, func(ctx context.Context, args map[string]any) (domain.Result, error) {
		return domain.TextResult("ok"), nil
	}))

	_, err := reg.Dispatch(context.Background(), "search_documents", json.RawMessage(`{}`), "aqila")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_term")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(queueSchema(), nil))
	assert.Error(t, reg.Register(queueSchema(), nil))
}

func TestSchemasPreserveRegistrationOrder(t *testing.T) {
	reg := New()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, reg.Register(domain.ToolSchema{Name: name}, nil))
	}
	schemas := reg.Schemas()
	require.Len(t, schemas, 3)
	assert.Equal(t, "c", schemas[0].Name)
	assert.Equal(t, "a", schemas[1].Name)
	assert.Equal(t, "b", schemas[2].Name)
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{"limit": float64(50), "queue_name": "sync", "without_messages": true}
	assert.Equal(t, 50, IntArg(args, "limit", 0))
	assert.Equal(t, 10, IntArg(args, "missing", 10))
	assert.Equal(t, "sync", StringArg(args, "queue_name", ""))
	assert.Equal(t, "x", StringArg(args, "missing", "x"))
	assert.True(t, BoolArg(args, "without_messages", false))
	assert.False(t, BoolArg(args, "missing", false))
}
