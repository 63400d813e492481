package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentcore/compact"
	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/internal/util"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/state"
)

// SpawnToolName is the pseudo-tool a model loop uses to request child runs.
// The engine intercepts calls to this name and turns them into a SpawnAgents
// directive instead of dispatching them to the tool registry.
const SpawnToolName = "spawn_agents"

// Config defines tuning parameters for the Engine's operational behavior.
//
// Additional concerns such as timeouts and tracing should be configured via
// functional options and caller-supplied contexts rather than expanding this
// struct.
type Config struct {
	// MaxModelCalls caps completion-service calls per run. A child run gets
	// its own budget. Set to 0 for unlimited.
	MaxModelCalls int

	// MaxConcurrentChildren bounds the goroutine fan-out of a single
	// SpawnAgents directive. Set to 0 for unlimited.
	MaxConcurrentChildren int

	// ContextBudget is the token budget handed to the compactor before every
	// resumption.
	ContextBudget int

	// DefaultMaxSteps is the step budget used for agent definitions that do
	// not specify one.
	DefaultMaxSteps int
}

// DefaultConfig provides production-ready default configuration values.
var DefaultConfig = Config{
	MaxModelCalls:         0,
	MaxConcurrentChildren: 8,
	ContextBudget:         100_000,
	DefaultMaxSteps:       50,
}

// OutputMode selects how the final output of a run is projected from its
// history when a Terminate directive is executed.
type OutputMode string

const (
	// OutputText projects the text of the last assistant message. This is
	// the default.
	OutputText OutputMode = "text"

	// OutputHistory projects the complete message history.
	OutputHistory OutputMode = "history"
)

// AgentDefinition describes one registered agent type: the instructions and
// tools given to the model, the step program interpreting its behavior, and
// its budgets.
type AgentDefinition struct {
	// Type is the unique registry key, referenced by SpawnRequest.AgentType.
	Type string

	// Description is surfaced to parent agents deciding what to spawn.
	Description string

	// Instructions is the standing system text for every model turn.
	Instructions string

	// Tools lists the tool schemas exposed to the model.
	Tools []core.ToolDefinition

	// Program interprets the agent's behavior. Defaults to a ModelLoopProgram
	// when nil.
	Program core.StepProgram

	// MaxSteps is the per-run step budget. Defaults to Config.DefaultMaxSteps
	// when 0.
	MaxSteps int

	// Output selects the final output projection. Defaults to OutputText.
	Output OutputMode
}

// Options configures an Engine instance using the functional options pattern.
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// Dispatcher executes CallTool directives. Runs without tools when nil:
	// any CallTool directive then resolves to an error result.
	Dispatcher core.ToolDispatcher

	// States persists agent states between resumptions and backs parent
	// lookups. Defaults to an in-memory implementation.
	States core.StateStore

	// Compactor shrinks histories before every resumption. Defaults to a
	// compactor with compact.DefaultConfig.
	Compactor *compact.Compactor

	// Estimator measures history size for ContextTokens bookkeeping.
	// Defaults to core.EstimateTokens.
	Estimator core.TokenEstimator

	// Logger provides structured logging for debugging and monitoring.
	// Defaults to NoOp logger if nil.
	Logger logging.Logger

	// Callbacks hooks into the execution lifecycle. Defaults to an empty
	// manager.
	Callbacks *CallbackManager
}

// WithConfig overrides the engine configuration.
func WithConfig(cfg Config) func(o *Options) {
	return func(o *Options) { o.Config = cfg }
}

// WithDispatcher sets the tool dispatcher.
func WithDispatcher(d core.ToolDispatcher) func(o *Options) {
	return func(o *Options) { o.Dispatcher = d }
}

// WithStateStore sets the agent state store.
func WithStateStore(s core.StateStore) func(o *Options) {
	return func(o *Options) { o.States = s }
}

// WithCompactor sets the context compactor.
func WithCompactor(c *compact.Compactor) func(o *Options) {
	return func(o *Options) { o.Compactor = c }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithCallbacks sets the lifecycle callback manager.
func WithCallbacks(cm *CallbackManager) func(o *Options) {
	return func(o *Options) { o.Callbacks = cm }
}

// Engine schedules agent runs as suspendable sequences of directives.
//
// Each registered agent type pairs a step program with its model-facing
// configuration. The engine pumps the program through Resume: it compacts
// the history, enforces the step budget, and asks the program for the next
// directive. Run executes directives until Terminate, handling tool
// dispatch, concurrent child spawning, and model turns.
//
// Concurrency model: exactly one directive is in flight per agent, and no
// agent ever runs concurrently with itself. SpawnAgents is the only fan-out
// point; children run in their own goroutines on fresh states and their
// results are merged back in request order. Cancellation propagates through
// the caller's context to model calls, tools and children, and surfaces as
// core.AbortedError, never as a silent fallback.
type Engine struct {
	completion core.CompletionService
	dispatcher core.ToolDispatcher
	states     core.StateStore
	compactor  *compact.Compactor
	estimator  core.TokenEstimator
	logger     logging.Logger
	callbacks  *CallbackManager
	config     Config

	agents map[string]AgentDefinition
	mu     sync.RWMutex
}

// New creates a new Engine driving the given completion service. All other
// collaborators have in-memory or no-op defaults suitable for development
// and testing; production deployments should supply their own via options.
func New(completion core.CompletionService, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:    DefaultConfig,
		States:    state.NewInMemoryStore(),
		Compactor: compact.New(),
		Estimator: core.EstimateTokens,
		Logger:    logging.NoOpLogger{},
		Callbacks: NewCallbackManager(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		completion: completion,
		dispatcher: opts.Dispatcher,
		states:     opts.States,
		compactor:  opts.Compactor,
		estimator:  opts.Estimator,
		logger:     opts.Logger,
		callbacks:  opts.Callbacks,
		config:     opts.Config,
		agents:     make(map[string]AgentDefinition),
	}
}

// RegisterAgent adds an agent definition to the registry, making its type
// available for Start and SpawnAgents requests. Re-registering a type
// replaces the previous definition.
func (e *Engine) RegisterAgent(def AgentDefinition) error {
	if def.Type == "" {
		return fmt.Errorf("agent definition must have a type")
	}
	if def.Program == nil {
		def.Program = NewModelLoopProgram()
	}
	if def.MaxSteps <= 0 {
		def.MaxSteps = e.config.DefaultMaxSteps
	}
	if def.Output == "" {
		def.Output = OutputText
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.agents[def.Type] = def
	return nil
}

// Definition returns the registered definition for an agent type.
func (e *Engine) Definition(agentType string) (AgentDefinition, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	def, ok := e.agents[agentType]
	return def, ok
}

// Start allocates a fresh root state for the given agent type and prompt.
func (e *Engine) Start(agentType, prompt string) (*core.AgentState, error) {
	def, ok := e.Definition(agentType)
	if !ok {
		return nil, core.NewValidationError(agentType, "unknown agent type")
	}
	st := core.NewAgentState(def.Type, def.Type, core.NewID(), "", def.MaxSteps)
	st.Append(core.NewUserMessage(prompt))
	if err := e.states.Put(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Resume advances an agent by exactly one directive decision. It compacts
// the history, enforces the step budget (a spent budget yields a forced
// Terminate, not an error), decrements it and asks the agent's step program
// for the next directive. A program returning a nil directive with budget
// remaining is a ValidationError.
func (e *Engine) Resume(ctx context.Context, st *core.AgentState, incoming *core.StepResult) (core.StepDirective, error) {
	if err := ctx.Err(); err != nil {
		return nil, &core.AbortedError{Err: err}
	}

	def, ok := e.Definition(st.AgentType)
	if !ok {
		return nil, core.NewValidationError(st.AgentType, "unknown agent type")
	}

	e.compactHistory(st)

	if st.StepsRemaining == 0 {
		return core.Terminate{}, nil
	}
	st.StepsRemaining--

	directive, err := def.Program.Next(ctx, st, incoming)
	if err != nil {
		return nil, err
	}
	if directive == nil {
		return nil, core.NewValidationError(st.AgentName, "step program yielded no directive")
	}
	return directive, nil
}

// domainLogger is the richer logging surface a logger may optionally
// implement (logging.AgentCoreLogger does); the engine upgrades to it for
// structured compaction and spawn records.
type domainLogger interface {
	LogCompaction(agentType string, tokensBefore, tokensAfter, folded int)
	LogSpawn(children, failures int, dur time.Duration)
}

// compactHistory runs the compactor over the state's history and refreshes
// the token bookkeeping. The compactor itself short-circuits cheaply when
// nothing triggers.
func (e *Engine) compactHistory(st *core.AgentState) {
	before := len(st.History)
	tokensBefore := st.ContextTokens
	st.History = e.compactor.Compact(st.History, e.config.ContextBudget)
	st.ContextTokens = e.estimator(st.History)
	if folded := before - len(st.History); folded > 0 {
		if dl, ok := e.logger.(domainLogger); ok {
			dl.LogCompaction(st.AgentType, tokensBefore, st.ContextTokens, folded)
			return
		}
		e.logger.Info("context compacted agent=%s tokens_before=%d tokens_after=%d messages_folded=%d",
			st.AgentName, tokensBefore, st.ContextTokens, folded)
	}
}

// Run drives an agent state to completion, executing each directive the
// program emits and feeding its result back in. It returns the final
// outcome projected per the agent's output mode.
func (e *Engine) Run(ctx context.Context, st *core.AgentState) (core.Outcome, error) {
	def, ok := e.Definition(st.AgentType)
	if !ok {
		return nil, core.NewValidationError(st.AgentType, "unknown agent type")
	}

	limiter := core.NewModelCallLimiter(e.config.MaxModelCalls)

	var incoming *core.StepResult
	for {
		directive, err := e.Resume(ctx, st, incoming)
		if err != nil {
			e.callbacks.Execute(ctx, CallbackOnError, &CallbackContext{State: st, Err: err})
			return nil, err
		}

		switch d := directive.(type) {
		case core.Terminate:
			if err := e.states.Put(st); err != nil {
				return nil, err
			}
			return e.finalOutput(def, st), nil

		case core.CallTool:
			result, err := e.dispatchTool(ctx, st, d)
			if err != nil {
				return nil, err
			}
			st.Append(core.NewToolResultMessage(*result))
			incoming = &core.StepResult{Tool: result}

		case core.SpawnAgents:
			children, err := e.spawnChildren(ctx, st, d.Requests)
			if err != nil {
				return nil, err
			}
			result := core.ToolResult{
				ID:    e.pendingCallID(st, SpawnToolName),
				Name:  SpawnToolName,
				Value: children,
			}
			st.Append(core.NewToolResultMessage(result).WithTag(core.TagSubagentSpawn))
			incoming = &core.StepResult{Children: children}

		case core.ContinueModelTurn:
			output, err := e.modelTurn(ctx, st, def, limiter)
			if err != nil {
				return nil, err
			}
			if !output.Empty() {
				st.Append(core.NewAssistantMessage(output.Text, output.ToolCalls))
			}
			incoming = &core.StepResult{Model: output}

		default:
			return nil, core.NewValidationError(st.AgentName, fmt.Sprintf("unsupported directive %T", directive))
		}

		if err := e.states.Put(st); err != nil {
			return nil, err
		}
	}
}

// dispatchTool executes a CallTool directive. Tool failures are data: they
// come back inside the result so the model can observe them. Only abort is
// an error; a dispatcher fault (including a recovered panic) surfaces as a
// tool-result error payload and is never auto-retried.
func (e *Engine) dispatchTool(ctx context.Context, st *core.AgentState, d core.CallTool) (*core.ToolResult, error) {
	call := core.ToolCall{ID: e.pendingCallID(st, d.Name), Name: d.Name, Input: d.Input}

	e.callbacks.Execute(ctx, CallbackBeforeTool, &CallbackContext{State: st, ToolCall: &call})

	started := time.Now()
	var result *core.ToolResult
	if e.dispatcher == nil {
		result = &core.ToolResult{ID: call.ID, Name: call.Name, Error: fmt.Sprintf("no tool dispatcher configured, cannot call %s", call.Name)}
	} else {
		var err error
		result, err = e.dispatcher.Dispatch(ctx, call)
		if err != nil {
			if core.IsAborted(err) {
				return nil, &core.AbortedError{Err: err}
			}
			result = &core.ToolResult{ID: call.ID, Name: call.Name, Error: fmt.Sprintf("tool dispatch failed: %v", err)}
		}
	}

	e.logger.Debug("tool call finished agent=%s tool=%s duration=%s failed=%t",
		st.AgentName, call.Name, time.Since(started), result.Error != "")

	e.callbacks.Execute(ctx, CallbackAfterTool, &CallbackContext{State: st, ToolCall: &call, ToolResult: result})

	return result, nil
}

// spawnChildren runs one fresh child per request concurrently and merges the
// outcomes back in request order. A failed child becomes a Failure outcome
// without affecting its siblings; only cancellation aborts the whole batch.
// An empty request list is a valid no-op.
func (e *Engine) spawnChildren(ctx context.Context, st *core.AgentState, requests []core.SpawnRequest) ([]core.ChildResult, error) {
	for _, req := range requests {
		if _, ok := e.Definition(req.AgentType); !ok {
			return nil, core.NewValidationError(st.AgentName, fmt.Sprintf("cannot spawn unknown agent type %q", req.AgentType))
		}
	}

	results := make([]core.ChildResult, len(requests))

	var sem chan struct{}
	if e.config.MaxConcurrentChildren > 0 {
		sem = make(chan struct{}, e.config.MaxConcurrentChildren)
	}

	started := time.Now()
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(idx int, req core.SpawnRequest) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			results[idx] = e.runChild(ctx, st, idx, req)
		}(i, req)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, &core.AbortedError{Err: err}
	}

	failures := 0
	for _, r := range results {
		if _, ok := r.Outcome.(core.Failure); ok {
			failures++
		}
	}
	if dl, ok := e.logger.(domainLogger); ok {
		dl.LogSpawn(len(results), failures, time.Since(started))
	} else {
		e.logger.Info("child agents completed agent=%s children=%d failures=%d duration=%s",
			st.AgentName, len(results), failures, time.Since(started))
	}

	e.callbacks.Execute(ctx, CallbackAfterSpawn, &CallbackContext{State: st, Children: results})

	return results, nil
}

// runChild executes one spawn request on a fresh state. Child histories
// start from the rendered prompt alone; nothing of the parent's context is
// inherited.
func (e *Engine) runChild(ctx context.Context, parent *core.AgentState, idx int, req core.SpawnRequest) core.ChildResult {
	def, _ := e.Definition(req.AgentType)
	name := fmt.Sprintf("%s-%d", req.AgentType, idx+1)

	prompt := req.Prompt
	if len(req.Params) > 0 {
		rendered, err := util.RenderTemplate(req.Prompt, req.Params)
		if err != nil {
			return core.ChildResult{AgentType: req.AgentType, AgentName: name, Outcome: core.Failure{Message: fmt.Sprintf("invalid prompt template: %v", err)}}
		}
		prompt = rendered
	}

	child := core.NewAgentState(def.Type, name, parent.RunID, parent.AgentID, def.MaxSteps)
	child.Append(core.NewUserMessage(prompt).WithTag(core.TagSubagentSpawn))

	outcome, err := e.Run(ctx, child)
	if err != nil {
		return core.ChildResult{AgentType: req.AgentType, AgentName: name, Outcome: core.Failure{Message: err.Error()}}
	}
	return core.ChildResult{AgentType: req.AgentType, AgentName: name, Outcome: outcome}
}

// modelTurn performs one completion against the agent's instructions and
// tool schemas, counting it against the run's model-call budget.
func (e *Engine) modelTurn(ctx context.Context, st *core.AgentState, def AgentDefinition, limiter *core.ModelCallLimiter) (*core.ModelOutput, error) {
	if err := limiter.Increment(); err != nil {
		return nil, err
	}

	e.callbacks.Execute(ctx, CallbackBeforeModel, &CallbackContext{State: st})

	started := time.Now()
	output, err := e.completion.Complete(ctx, core.CompletionRequest{
		History:      st.History,
		Tools:        def.Tools,
		Instructions: def.Instructions,
	})
	if err != nil {
		if core.IsAborted(err) {
			return nil, &core.AbortedError{Err: err}
		}
		return nil, fmt.Errorf("model turn: %w", err)
	}

	e.logger.Debug("model turn finished agent=%s duration=%s tool_calls=%d",
		st.AgentName, time.Since(started), len(output.ToolCalls))

	e.callbacks.Execute(ctx, CallbackAfterModel, &CallbackContext{State: st, Model: output})

	return output, nil
}

// pendingCallID resolves the tool-call id the model is waiting on for the
// given tool name, so the appended result matches the provider's pairing
// rules. Falls back to a fresh id for programmatic calls that have no
// originating assistant message.
func (e *Engine) pendingCallID(st *core.AgentState, name string) string {
	resolved := make(map[string]bool)
	for i := len(st.History) - 1; i >= 0; i-- {
		msg := st.History[i]
		if msg.Role == core.RoleTool {
			for _, r := range msg.ToolResults() {
				resolved[r.ID] = true
			}
			continue
		}
		if msg.Role == core.RoleAssistant {
			for _, c := range msg.ToolCalls() {
				if c.Name == name && !resolved[c.ID] {
					return c.ID
				}
			}
			break
		}
	}
	return core.NewID()
}

// finalOutput projects the terminal state into an outcome per the agent's
// output mode.
func (e *Engine) finalOutput(def AgentDefinition, st *core.AgentState) core.Outcome {
	switch def.Output {
	case OutputHistory:
		return core.Success{Value: st.History}
	default:
		for i := len(st.History) - 1; i >= 0; i-- {
			if st.History[i].Role != core.RoleAssistant {
				continue
			}
			if text := st.History[i].Text(); text != "" {
				return core.Success{Value: text}
			}
		}
		return core.Success{Value: ""}
	}
}
