package core

import "context"

// StepProgram expresses an agent's behavior as a suspendable sequence of
// directives. The engine pumps it through an explicit suspend/resume
// interface instead of native generator syntax so the state machine stays
// serializable and inspectable across process boundaries: Next must derive
// the following directive from the agent state (primarily its history) and
// the incoming result alone, never from hidden goroutine-local state.
//
// Contract per call:
//   - incoming is nil on the first resumption of a run, otherwise it carries
//     the result of the previously issued directive.
//   - Next returns exactly one directive. Returning a nil directive with a
//     nil error is a programming error in the agent definition and is
//     surfaced by the engine as a ValidationError.
//   - Next must not block on external work; blocking operations are what
//     directives are for.
//
// One step program per agent runs at a time; no agent ever runs concurrently
// with itself.
type StepProgram interface {
	Next(ctx context.Context, state *AgentState, incoming *StepResult) (StepDirective, error)
}
