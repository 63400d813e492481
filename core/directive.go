package core

import "encoding/json"

// StepDirective is the tagged instruction a step program emits at each
// suspension point. Concrete directive types implement the unexported
// isDirective marker enabling a closed set; exactly one directive is in
// flight per agent at any time.
type StepDirective interface{ isDirective() }

// CallTool requests execution of a named tool with raw input.
type CallTool struct {
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// isDirective implements the StepDirective interface for CallTool.
func (CallTool) isDirective() {}

// SpawnAgents requests concurrent execution of fresh child runs, one per
// request. Results are merged back in request order regardless of completion
// order.
type SpawnAgents struct {
	Requests []SpawnRequest `json:"requests"`
}

// isDirective implements the StepDirective interface for SpawnAgents.
func (SpawnAgents) isDirective() {}

// SpawnRequest describes one child run to start.
type SpawnRequest struct {
	AgentType string         `json:"agent_type"`
	Prompt    string         `json:"prompt"`
	Params    map[string]any `json:"params,omitempty"`
}

// ContinueModelTurn hands control to the completion service for the next
// model turn.
type ContinueModelTurn struct{}

// isDirective implements the StepDirective interface for ContinueModelTurn.
func (ContinueModelTurn) isDirective() {}

// Terminate ends the run. The final output is extracted per the agent's
// configured output mode.
type Terminate struct{}

// isDirective implements the StepDirective interface for Terminate.
func (Terminate) isDirective() {}

// Outcome is the result of one child run: Success or Failure. Concrete
// outcome types implement the unexported isOutcome marker.
type Outcome interface{ isOutcome() }

// Success carries the child's final output value.
type Success struct {
	Value any `json:"value"`
}

// isOutcome implements the Outcome interface for Success.
func (Success) isOutcome() {}

// Failure carries the child's error message. A failed child never aborts its
// siblings; the parent observes the failure as ordinary data.
type Failure struct {
	Message string `json:"message"`
}

// isOutcome implements the Outcome interface for Failure.
func (Failure) isOutcome() {}

// ChildResult pairs a spawned child's identity with its outcome. A
// SpawnAgents directive resolves to one ChildResult per request, ordered by
// request index.
type ChildResult struct {
	AgentType string  `json:"agent_type"`
	AgentName string  `json:"agent_name"`
	Outcome   Outcome `json:"outcome"`
}

// StepResult carries the outcome of the previously issued directive back
// into the step program on the next resumption. Exactly one field is set,
// matching the directive that suspended the program; a nil *StepResult means
// this is the first resumption of the run.
type StepResult struct {
	Tool     *ToolResult   `json:"tool,omitempty"`
	Children []ChildResult `json:"children,omitempty"`
	Model    *ModelOutput  `json:"model,omitempty"`
}
