// Package engine implements the agent step engine: a coroutine-style
// scheduler that interprets an agent's behavior as a suspendable sequence of
// directives.
//
// A step program (core.StepProgram) never blocks on external work. Instead
// it emits exactly one directive per resumption:
//
//   - core.CallTool: execute a tool through the dispatcher
//   - core.SpawnAgents: run fresh child agents concurrently
//   - core.ContinueModelTurn: hand control to the completion service
//   - core.Terminate: end the run
//
// The engine pumps the program through Resume, which also enforces the two
// per-run budgets: before every resumption the history is compacted against
// the context budget, and a spent step budget produces a forced Terminate.
// Run drives Resume in a loop, executing each directive and feeding its
// result back into the program as a core.StepResult.
//
// Directives are derived from the agent state alone, so a run can be
// suspended at any directive boundary, persisted through the state store and
// resumed later, possibly in another process.
//
// Spawned children run on fresh states with their own budgets; their
// outcomes merge back in request order, and a failing child surfaces as a
// Failure outcome without disturbing its siblings. Cancellation propagates
// through the caller's context and surfaces as core.AbortedError, which the
// engine never converts into fallback behavior.
//
// Example:
//
//	eng := engine.New(model.NewCompletionAdapter(m),
//	    engine.WithDispatcher(tool.NewDispatcher(registry)),
//	    engine.WithLogger(logger),
//	)
//	_ = eng.RegisterAgent(engine.AgentDefinition{
//	    Type:         "assistant",
//	    Instructions: "You are a helpful assistant.",
//	    Tools:        registry.Definitions(),
//	})
//	st, _ := eng.Start("assistant", "What files are in the repo?")
//	outcome, err := eng.Run(ctx, st)
package engine
