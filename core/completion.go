package core

import "context"

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// CompletionRequest is the normalized model input assembled by the engine:
// conversation history, the schemas of the tools the agent may call and the
// standing instruction text.
type CompletionRequest struct {
	History      []Message        `json:"history"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Instructions string           `json:"instructions,omitempty"`
}

// ModelOutput is the completion service's final turn: accumulated text plus
// any structured tool call requests. An output with neither text nor tool
// calls is the normal end-of-response condition, not an error.
type ModelOutput struct {
	Text      string     `json:"text,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Empty reports whether the model produced neither text nor tool calls.
func (o ModelOutput) Empty() bool { return o.Text == "" && len(o.ToolCalls) == 0 }

// CompletionService is the external language-model collaborator. The wire
// format is the implementation's concern; the engine only sees the
// normalized request/output pair. Implementations must respect context
// cancellation.
type CompletionService interface {
	Complete(ctx context.Context, req CompletionRequest) (*ModelOutput, error)
}

// ToolDispatcher is the external tool execution collaborator. Individual
// tool failures are data: they come back inside the ToolResult's Error
// field. A non-nil error return means the dispatcher itself failed
// (transient infrastructure fault); the engine surfaces that as a
// tool-result error for the step program to decide on, never auto-retrying.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call ToolCall) (*ToolResult, error)
}
