package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcore/core"
)

func echoTool() *FunctionTool {
	return NewFunctionTool("echo", "Echoes its input back.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []any{"text"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["text"], nil
		},
	)
}

func TestFunctionTool_Call(t *testing.T) {
	tl := echoTool()

	value, err := tl.Call(context.Background(), map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", value)
}

func TestFunctionTool_ValidationFailures(t *testing.T) {
	tl := echoTool()

	t.Run("missing required field", func(t *testing.T) {
		_, err := tl.Call(context.Background(), map[string]any{})
		var te *ToolError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, CodeValidation, te.Code)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := tl.Call(context.Background(), map[string]any{"text": 42})
		var te *ToolError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, CodeValidation, te.Code)
	})
}

func TestFunctionTool_ErrorNormalization(t *testing.T) {
	t.Run("plain error wrapped as execution error", func(t *testing.T) {
		tl := NewFunctionTool("boom", "Always fails.", nil,
			func(context.Context, map[string]any) (any, error) {
				return nil, errors.New("disk full")
			},
		)
		_, err := tl.Call(context.Background(), nil)
		var te *ToolError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, CodeExecution, te.Code)
		assert.Contains(t, te.Message, "disk full")
	})

	t.Run("tool error passed through", func(t *testing.T) {
		custom := NewToolError("boom", "not allowed", "FORBIDDEN")
		tl := NewFunctionTool("boom", "Always fails.", nil,
			func(context.Context, map[string]any) (any, error) {
				return nil, custom
			},
		)
		_, err := tl.Call(context.Background(), nil)
		var te *ToolError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "FORBIDDEN", te.Code)
	})
}

func TestFunctionToolFromStruct(t *testing.T) {
	type params struct {
		Path  string `json:"path" description:"File to read"`
		Limit *int   `json:"limit,omitempty"`
	}

	tl := NewFunctionToolFromStruct("read_file", "Reads a file.", params{},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["path"], nil
		},
	)

	schema := tl.Parameters()
	assert.Equal(t, "object", schema["type"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "path")
	assert.Contains(t, props, "limit")

	// The derived schema enforces its required fields on Call.
	_, err := tl.Call(context.Background(), map[string]any{})
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeValidation, te.Code)

	value, err := tl.Call(context.Background(), map[string]any{"path": "main.go"})
	require.NoError(t, err)
	assert.Equal(t, "main.go", value)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool()))

	t.Run("duplicate rejected", func(t *testing.T) {
		assert.Error(t, r.Register(echoTool()))
	})

	t.Run("lookup", func(t *testing.T) {
		tl, ok := r.Get("echo")
		require.True(t, ok)
		assert.Equal(t, "echo", tl.Name())

		_, ok = r.Get("missing")
		assert.False(t, ok)
	})

	t.Run("definitions sorted by name", func(t *testing.T) {
		require.NoError(t, r.Register(NewFunctionTool("add", "Adds numbers.", nil,
			func(context.Context, map[string]any) (any, error) { return 0, nil },
		)))
		defs := r.Definitions()
		require.Len(t, defs, 2)
		assert.Equal(t, "add", defs[0].Name)
		assert.Equal(t, "echo", defs[1].Name)
	})
}

func TestDispatcher_Dispatch(t *testing.T) {
	r := NewRegistry(echoTool())
	d := NewDispatcher(r)

	call := core.ToolCall{ID: "call-1", Name: "echo", Input: json.RawMessage(`{"text":"hi"}`)}
	result, err := d.Dispatch(context.Background(), call)
	require.NoError(t, err)
	assert.Equal(t, "call-1", result.ID)
	assert.Equal(t, "echo", result.Name)
	assert.Equal(t, "hi", result.Value)
	assert.Empty(t, result.Error)
}

func TestDispatcher_FailuresReportedAsData(t *testing.T) {
	panicky := NewFunctionTool("panicky", "Panics.", nil,
		func(context.Context, map[string]any) (any, error) {
			panic("nil map write")
		},
	)
	failing := NewFunctionTool("failing", "Fails.", nil,
		func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("upstream timeout")
		},
	)
	d := NewDispatcher(NewRegistry(panicky, failing))

	t.Run("unknown tool", func(t *testing.T) {
		result, err := d.Dispatch(context.Background(), core.ToolCall{ID: "c1", Name: "nope"})
		require.NoError(t, err)
		assert.Contains(t, result.Error, "not found")
	})

	t.Run("malformed input", func(t *testing.T) {
		result, err := d.Dispatch(context.Background(), core.ToolCall{ID: "c2", Name: "failing", Input: json.RawMessage(`{broken`)})
		require.NoError(t, err)
		assert.Contains(t, result.Error, "invalid arguments")
	})

	t.Run("tool error", func(t *testing.T) {
		result, err := d.Dispatch(context.Background(), core.ToolCall{ID: "c3", Name: "failing"})
		require.NoError(t, err)
		assert.Contains(t, result.Error, "upstream timeout")
	})

	t.Run("panic recovered", func(t *testing.T) {
		result, err := d.Dispatch(context.Background(), core.ToolCall{ID: "c4", Name: "panicky"})
		require.NoError(t, err)
		assert.Contains(t, result.Error, "tool panicked")
		assert.Contains(t, result.Error, "nil map write")
	})
}

func TestDispatcher_CancelledContext(t *testing.T) {
	d := NewDispatcher(NewRegistry(echoTool()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Dispatch(ctx, core.ToolCall{ID: "c1", Name: "echo", Input: json.RawMessage(`{"text":"hi"}`)})
	require.Error(t, err)
	assert.True(t, core.IsAborted(err))
}
