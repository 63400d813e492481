package transport

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcore/core"
)

type captureSink struct {
	frames []Frame
	err    error
}

func (s *captureSink) Send(_ context.Context, frame Frame) error {
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, frame)
	return nil
}

func TestBoundary_SmallPayloadSingleFrame(t *testing.T) {
	sink := &captureSink{}
	b := New(sink)

	err := b.SendToolResult(context.Background(), core.ToolResult{
		ID:    "c1",
		Name:  "read_file",
		Value: "package main",
	})
	require.NoError(t, err)
	require.Len(t, sink.frames, 1)

	frame := sink.frames[0]
	assert.Equal(t, "tool_result", frame.Kind)
	assert.Equal(t, "c1", frame.Ref)
	assert.Equal(t, 0, frame.Seq)
	assert.Equal(t, 1, frame.Total)
	assert.True(t, frame.Last)
}

func TestBoundary_LargePayloadSplitsOrdered(t *testing.T) {
	sink := &captureSink{}
	b := New(sink, func(o *Options) { o.MaxMessageSize = 80 })

	err := b.SendToolResult(context.Background(), core.ToolResult{
		ID:    "c1",
		Name:  "read_file",
		Value: strings.Repeat("a", 400),
	})
	require.NoError(t, err)
	require.Greater(t, len(sink.frames), 1)

	for i, frame := range sink.frames {
		assert.Equal(t, i, frame.Seq)
		assert.Equal(t, len(sink.frames), frame.Total)
		assert.Equal(t, i == len(sink.frames)-1, frame.Last)
		assert.LessOrEqual(t, frame.Chunk.SerializedLength, 80)
	}
}

func TestBoundary_ErrorResultCarriesError(t *testing.T) {
	sink := &captureSink{}
	b := New(sink)

	err := b.SendToolResult(context.Background(), core.ToolResult{
		ID:    "c1",
		Name:  "run_command",
		Error: "exit status 1",
	})
	require.NoError(t, err)
	require.Len(t, sink.frames, 1)
	payload, ok := sink.frames[0].Chunk.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "exit status 1", payload["error"])
	assert.NotContains(t, payload, "value")
}

func TestBoundary_SpawnSummary(t *testing.T) {
	sink := &captureSink{}
	b := New(sink)

	err := b.SendSpawnSummary(context.Background(), "agent-1", []core.ChildResult{
		{AgentType: "worker", AgentName: "worker-1", Outcome: core.Success{Value: "done"}},
		{AgentType: "worker", AgentName: "worker-2", Outcome: core.Failure{Message: "timeout"}},
	})
	require.NoError(t, err)
	require.Len(t, sink.frames, 1)
	assert.Equal(t, "spawn_summary", sink.frames[0].Kind)
	assert.Equal(t, "agent-1", sink.frames[0].Ref)

	summary, ok := sink.frames[0].Chunk.Data.([]any)
	require.True(t, ok)
	require.Len(t, summary, 2)
}

func TestBoundary_SinkErrorPropagates(t *testing.T) {
	sink := &captureSink{err: errors.New("connection reset")}
	b := New(sink)

	err := b.SendToolResult(context.Background(), core.ToolResult{ID: "c1", Name: "x", Value: "v"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
