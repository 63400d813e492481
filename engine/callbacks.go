package engine

import (
	"context"
	"sync"

	"github.com/hupe1980/agentcore/core"
)

// CallbackType defines the lifecycle points where callbacks can be executed.
//
// Callbacks provide a mechanism for hooking into the engine's execution
// pipeline without modifying core logic: auditing tool calls, collecting
// model-turn metrics, reacting to spawn batches or surfacing errors.
// Callbacks are executed synchronously and must not block.
type CallbackType string

const (
	// CallbackBeforeModel is triggered before a model turn.
	// Use for request inspection, caching, or rate limiting.
	CallbackBeforeModel CallbackType = "before_model"

	// CallbackAfterModel is triggered after a model turn.
	// Use for response processing, logging, or metrics collection.
	CallbackAfterModel CallbackType = "after_model"

	// CallbackBeforeTool is triggered before tool dispatch.
	// Use for parameter auditing or security checks.
	CallbackBeforeTool CallbackType = "before_tool"

	// CallbackAfterTool is triggered after tool dispatch.
	// Use for result processing or side effect handling.
	CallbackAfterTool CallbackType = "after_tool"

	// CallbackAfterSpawn is triggered after a spawn batch has merged.
	// Use for fan-out metrics or child outcome auditing.
	CallbackAfterSpawn CallbackType = "after_spawn"

	// CallbackOnError is triggered when a run fails.
	// Use for alerting or cleanup.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext carries the execution details relevant to the lifecycle
// point being observed. Only the fields matching the callback type are set.
type CallbackContext struct {
	// State is the agent state at the time of the callback. Callbacks must
	// treat it as read-only.
	State *core.AgentState

	// ToolCall and ToolResult are set around tool dispatch.
	ToolCall   *core.ToolCall
	ToolResult *core.ToolResult

	// Model is the completion output, set after a model turn.
	Model *core.ModelOutput

	// Children are the merged spawn outcomes, set after a spawn batch.
	Children []core.ChildResult

	// Err is the failure terminating the run, set on error callbacks.
	Err error
}

// Callback observes one lifecycle point. Implementations should be fast,
// panic-free and stateless; a callback cannot alter control flow.
type Callback interface {
	// Type returns the callback type this implementation handles.
	Type() CallbackType

	// Execute performs the callback logic with the provided context.
	Execute(ctx context.Context, cc *CallbackContext)
}

// FunctionCallback adapts a plain function into a Callback.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, cc *CallbackContext)
}

// NewFunctionCallback creates a callback from a function.
func NewFunctionCallback(callbackType CallbackType, fn func(ctx context.Context, cc *CallbackContext)) *FunctionCallback {
	return &FunctionCallback{callbackType: callbackType, fn: fn}
}

// Type returns the lifecycle point this callback observes.
func (c *FunctionCallback) Type() CallbackType { return c.callbackType }

// Execute invokes the wrapped function.
func (c *FunctionCallback) Execute(ctx context.Context, cc *CallbackContext) { c.fn(ctx, cc) }

// CallbackManager routes lifecycle events to registered callbacks. It is
// safe for concurrent use; spawned children share the parent engine's
// manager.
type CallbackManager struct {
	mu        sync.RWMutex
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{callbacks: make(map[CallbackType][]Callback)}
}

// Register adds a callback for its declared type. Multiple callbacks per
// type run in registration order.
func (cm *CallbackManager) Register(cb Callback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks[cb.Type()] = append(cm.callbacks[cb.Type()], cb)
}

// Execute runs all callbacks registered for the given type.
func (cm *CallbackManager) Execute(ctx context.Context, t CallbackType, cc *CallbackContext) {
	cm.mu.RLock()
	cbs := cm.callbacks[t]
	cm.mu.RUnlock()
	for _, cb := range cbs {
		cb.Execute(ctx, cc)
	}
}
