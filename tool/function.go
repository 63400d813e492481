package tool

import (
	"context"
	"errors"

	"github.com/hupe1980/agentcore/internal/util"
)

// FunctionTool adapts a plain Go function into a Tool. It validates
// arguments against its schema before execution and normalizes failures so
// callers always receive a *ToolError with a consistent code:
//
//	VALIDATION_ERROR -> schema / argument mismatch
//	EXECUTION_ERROR  -> underlying function returned an error
//
// Custom codes are preserved when the function returns a *ToolError itself.
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// implementation. The parameters map follows the minimal JSON-Schema shape
// validated by util.ValidateParameters (type, properties, required, enum).
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct type
// using reflection (json tags name the fields, omitempty/pointer means
// optional, description tags become schema descriptions).
func NewFunctionToolFromStruct(
	name, description string,
	paramsStruct any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(paramsStruct), fn)
}

// Name returns the tool identifier.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the tool description shown to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing accepted arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the schema then invokes the wrapped function,
// normalizing error types as documented on FunctionTool.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if t.parameters != nil {
		if err := util.ValidateParameters(args, t.parameters); err != nil {
			var ve *util.ValidationError
			if errors.As(err, &ve) {
				return nil, &ToolError{Tool: t.name, Message: ve.Error(), Code: CodeValidation, Details: ve}
			}
			return nil, NewToolError(t.name, err.Error(), CodeValidation)
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		var te *ToolError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, NewToolError(t.name, err.Error(), CodeExecution)
	}
	return result, nil
}
