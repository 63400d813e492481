package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
)

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	// Logger receives per-call diagnostics.
	Logger logging.Logger
}

// Dispatcher resolves tool calls against a registry and executes them.
// Tool failures (unknown tool, bad arguments, execution errors, panics)
// are reported inside the ToolResult so the model can observe and react
// to them; the error return is reserved for faults of the dispatcher
// itself or a cancelled context.
type Dispatcher struct {
	registry *Registry
	logger   logging.Logger
}

var _ core.ToolDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, optFns ...func(o *DispatcherOptions)) *Dispatcher {
	opts := DispatcherOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Dispatcher{registry: registry, logger: opts.Logger}
}

// Dispatch executes a single tool call.
func (d *Dispatcher) Dispatch(ctx context.Context, call core.ToolCall) (*core.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &core.ToolResult{ID: call.ID, Name: call.Name}

	t, ok := d.registry.Get(call.Name)
	if !ok {
		result.Error = NewToolError(call.Name, fmt.Sprintf("tool %s not found", call.Name), CodeNotFound).Error()
		return result, nil
	}

	args := map[string]any{}
	if len(call.Input) > 0 {
		if err := json.Unmarshal(call.Input, &args); err != nil {
			result.Error = NewToolError(call.Name, fmt.Sprintf("invalid arguments: %v", err), CodeValidation).Error()
			return result, nil
		}
	}

	value, err := d.callSafely(ctx, t, args)
	if err != nil {
		if core.IsAborted(err) {
			return nil, err
		}
		d.logger.Error("tool call failed tool=%s error=%v", call.Name, err)
		result.Error = err.Error()
		return result, nil
	}

	result.Value = value
	return result, nil
}

// callSafely invokes the tool, converting panics into execution errors so
// a misbehaving tool cannot take down the step loop.
func (d *Dispatcher) callSafely(ctx context.Context, t Tool, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewToolError(t.Name(), fmt.Sprintf("tool panicked: %v", r), CodeExecution)
		}
	}()
	return t.Call(ctx, args)
}
