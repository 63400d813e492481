package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentcore/core"
)

// ModelLoopProgram is the canonical step program: alternate model turns with
// the directives the model asked for until it produces a final answer.
//
// Every decision is derived from the agent state alone, never from hidden
// goroutine state, so a run can be suspended, persisted and resumed on
// another process at any directive boundary. The pending work is computed as
// the tool calls of the last assistant message minus the ids already
// answered by subsequent tool messages. Calls to SpawnToolName are
// intercepted and translated into SpawnAgents directives.
type ModelLoopProgram struct{}

var _ core.StepProgram = (*ModelLoopProgram)(nil)

// NewModelLoopProgram constructs the default model-driven step program.
func NewModelLoopProgram() *ModelLoopProgram {
	return &ModelLoopProgram{}
}

// spawnInput is the wire shape of a SpawnToolName call payload.
type spawnInput struct {
	Requests []core.SpawnRequest `json:"requests"`
}

// Next decides the following directive from the current history.
func (p *ModelLoopProgram) Next(_ context.Context, st *core.AgentState, incoming *core.StepResult) (core.StepDirective, error) {
	if call, ok := pendingToolCall(st); ok {
		if call.Name == SpawnToolName {
			var input spawnInput
			if len(call.Input) > 0 {
				if err := json.Unmarshal(call.Input, &input); err != nil {
					return nil, core.NewValidationError(st.AgentName, fmt.Sprintf("malformed %s payload: %v", SpawnToolName, err))
				}
			}
			return core.SpawnAgents{Requests: input.Requests}, nil
		}
		return core.CallTool{Name: call.Name, Input: call.Input}, nil
	}

	// An empty model response means the model has nothing further to do.
	if incoming != nil && incoming.Model != nil && incoming.Model.Empty() {
		return core.Terminate{}, nil
	}

	// A text-only assistant turn is the final answer.
	if last, ok := st.LastMessage(); ok && last.Role == core.RoleAssistant && len(last.ToolCalls()) == 0 {
		return core.Terminate{}, nil
	}

	return core.ContinueModelTurn{}, nil
}

// pendingToolCall returns the first tool call of the most recent assistant
// message that has no matching tool result yet.
func pendingToolCall(st *core.AgentState) (core.ToolCall, bool) {
	resolved := make(map[string]bool)
	for i := len(st.History) - 1; i >= 0; i-- {
		msg := st.History[i]
		switch msg.Role {
		case core.RoleTool:
			for _, r := range msg.ToolResults() {
				resolved[r.ID] = true
			}
		case core.RoleAssistant:
			for _, c := range msg.ToolCalls() {
				if !resolved[c.ID] {
					return c, true
				}
			}
			return core.ToolCall{}, false
		}
	}
	return core.ToolCall{}, false
}
