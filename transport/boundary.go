// Package transport enforces the outbound message-size limit. Payloads that
// may exceed the limit (tool results, spawn summaries) are split by the
// chunk package exactly here, at the process boundary, and emitted as
// ordered frames; internal bookkeeping never sees a chunked value.
package transport

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentcore/chunk"
	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
)

// Frame is one ordered fragment of an outbound payload. Receivers
// reassemble by concatenating chunk data for Seq 0..Total-1.
type Frame struct {
	// Kind names the payload type ("tool_result", "spawn_summary").
	Kind string `json:"kind"`

	// Ref ties all frames of one payload together (the tool call id or the
	// spawning agent id).
	Ref string `json:"ref"`

	Seq   int  `json:"seq"`
	Total int  `json:"total"`
	Last  bool `json:"last"`

	Chunk chunk.Chunk `json:"chunk"`
}

// Sink receives ordered frames. Implementations are expected to preserve
// the order of Send calls within one payload.
type Sink interface {
	Send(ctx context.Context, frame Frame) error
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, frame Frame) error

// Send implements the Sink interface.
func (f SinkFunc) Send(ctx context.Context, frame Frame) error { return f(ctx, frame) }

// Options configures a Boundary.
type Options struct {
	// MaxMessageSize is the serialized-size budget per frame payload.
	MaxMessageSize int

	// Logger receives per-payload diagnostics.
	Logger logging.Logger
}

// DefaultMaxMessageSize bounds a single outbound frame payload.
const DefaultMaxMessageSize = 64 * 1024

// Boundary is the outbound edge of the engine: it serializes payloads into
// size-bounded frames and hands them to a sink.
type Boundary struct {
	sink   Sink
	max    int
	logger logging.Logger
}

// New creates a Boundary emitting to the given sink.
func New(sink Sink, optFns ...func(o *Options)) *Boundary {
	opts := Options{
		MaxMessageSize: DefaultMaxMessageSize,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Boundary{sink: sink, max: opts.MaxMessageSize, logger: opts.Logger}
}

// SendToolResult emits a tool result as ordered frames keyed by the call id.
func (b *Boundary) SendToolResult(ctx context.Context, result core.ToolResult) error {
	payload := map[string]any{
		"id":   result.ID,
		"name": result.Name,
	}
	if result.Error != "" {
		payload["error"] = result.Error
	} else {
		payload["value"] = result.Value
	}
	return b.send(ctx, "tool_result", result.ID, payload)
}

// SendSpawnSummary emits the merged child results of one spawn batch as
// ordered frames keyed by the spawning agent.
func (b *Boundary) SendSpawnSummary(ctx context.Context, agentID string, children []core.ChildResult) error {
	summary := make([]any, 0, len(children))
	for _, c := range children {
		entry := map[string]any{
			"agent_type": c.AgentType,
			"agent_name": c.AgentName,
		}
		switch o := c.Outcome.(type) {
		case core.Success:
			entry["value"] = o.Value
		case core.Failure:
			entry["failure"] = o.Message
		}
		summary = append(summary, entry)
	}
	return b.send(ctx, "spawn_summary", agentID, summary)
}

func (b *Boundary) send(ctx context.Context, kind, ref string, payload any) error {
	chunks := chunk.Split(payload, b.max)
	b.logger.Debug("sending payload kind=%s ref=%s frames=%d", kind, ref, len(chunks))
	for i, c := range chunks {
		frame := Frame{
			Kind:  kind,
			Ref:   ref,
			Seq:   i,
			Total: len(chunks),
			Last:  i == len(chunks)-1,
			Chunk: c,
		}
		if err := b.sink.Send(ctx, frame); err != nil {
			return fmt.Errorf("send %s frame %d/%d: %w", kind, i+1, len(chunks), err)
		}
	}
	return nil
}
