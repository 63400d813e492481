// Package agentcore provides a high-level façade over the step engine and
// its collaborators (completion service, tools, compaction, state & logging)
// enabling rapid construction of multi‑agent reasoning systems. Most
// applications interact with this package by:
//  1. Creating an AgentCore via New() with a model (optionally overriding
//     default in‑memory collaborators)
//  2. Registering one or more agent definitions
//  3. Starting runs asynchronously (Run) or synchronously (RunSync)
//
// The façade delegates scheduling to engine.Engine while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable state store and
// a structured logger.
package agentcore

import (
	"context"

	"github.com/hupe1980/agentcore/compact"
	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/engine"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/model"
	"github.com/hupe1980/agentcore/state"
	"github.com/hupe1980/agentcore/tool"
)

// Options configures the AgentCore instance.
type Options struct {
	// EngineConfig tunes budgets and fan-out limits.
	EngineConfig engine.Config

	// Tools is the registry backing tool dispatch. Defaults to an empty
	// registry.
	Tools *tool.Registry

	// States persists agent states. Defaults to an in-memory
	// implementation.
	States core.StateStore

	// Compactor shrinks histories before every resumption. Defaults to
	// compact.DefaultConfig behavior.
	Compactor *compact.Compactor

	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger
}

// AgentCore is the high-level façade aggregating the engine and its
// collaborators.
type AgentCore struct {
	opts   Options
	tools  *tool.Registry
	engine *engine.Engine
}

// New creates a new AgentCore driving the given model. Any unset
// collaborator is initialized with an in-memory or no-op implementation.
func New(m model.Model, optFns ...func(o *Options)) *AgentCore {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Tools:        tool.NewRegistry(),
		States:       state.NewInMemoryStore(),
		Compactor:    compact.New(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	eng := engine.New(model.NewCompletionAdapter(m),
		engine.WithConfig(opts.EngineConfig),
		engine.WithDispatcher(tool.NewDispatcher(opts.Tools, func(o *tool.DispatcherOptions) {
			o.Logger = opts.Logger
		})),
		engine.WithStateStore(opts.States),
		engine.WithCompactor(opts.Compactor),
		engine.WithLogger(opts.Logger),
	)

	return &AgentCore{opts: opts, tools: opts.Tools, engine: eng}
}

// Engine exposes the underlying step engine for advanced use (Resume-level
// control, callbacks).
func (a *AgentCore) Engine() *engine.Engine { return a.engine }

// RegisterTool adds a tool to the registry backing tool dispatch.
func (a *AgentCore) RegisterTool(t tool.Tool) error { return a.tools.Register(t) }

// RegisterAgent adds an agent definition to the engine. Definitions without
// explicit tools are given the full registry.
func (a *AgentCore) RegisterAgent(def engine.AgentDefinition) error {
	if def.Tools == nil {
		def.Tools = a.tools.Definitions()
	}
	return a.engine.RegisterAgent(def)
}

// Run starts a root run for the given agent type and prompt, returning the
// fresh state and a channel delivering the single terminal result.
func (a *AgentCore) Run(ctx context.Context, agentType, prompt string) (*core.AgentState, <-chan RunResult, error) {
	st, err := a.engine.Start(agentType, prompt)
	if err != nil {
		return nil, nil, err
	}

	results := make(chan RunResult, 1)
	go func() {
		defer close(results)
		outcome, err := a.engine.Run(ctx, st)
		results <- RunResult{Outcome: outcome, Err: err}
	}()

	return st, results, nil
}

// RunSync drives a root run to completion and returns its outcome.
func (a *AgentCore) RunSync(ctx context.Context, agentType, prompt string) (core.Outcome, error) {
	st, err := a.engine.Start(agentType, prompt)
	if err != nil {
		return nil, err
	}
	return a.engine.Run(ctx, st)
}

// RunResult pairs the terminal outcome of an asynchronous run with its
// error, exactly one of which is meaningful.
type RunResult struct {
	Outcome core.Outcome
	Err     error
}
