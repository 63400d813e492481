package core

import (
	"context"
	"errors"
	"fmt"
)

// AbortedError signals caller-initiated cancellation. It is always
// propagated as-is: never retried, never converted into a fallback path.
// Substituting fallback behavior on abort would silently discard the
// caller's explicit intent to stop. Timeouts are a caller-supplied special
// case (context deadline), not a separate code path.
type AbortedError struct {
	Err error // Underlying context error
}

func (e *AbortedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("run aborted: %v", e.Err)
	}
	return "run aborted"
}

func (e *AbortedError) Unwrap() error { return e.Err }

// IsAborted reports whether err represents caller-initiated cancellation,
// either as an AbortedError or a bare context error.
func IsAborted(err error) bool {
	if err == nil {
		return false
	}
	var ae *AbortedError
	if errors.As(err, &ae) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ValidationError reports a malformed agent program or spawn request (e.g. a
// step program that yields no directive before budget exhaustion, or a spawn
// referencing an unknown agent type). It is structured output for the
// caller, not a crash.
type ValidationError struct {
	Agent   string `json:"agent,omitempty"` // Agent type or name at fault
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("validation error in agent %s: %s", e.Agent, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a ValidationError for the given agent.
func NewValidationError(agent, message string) *ValidationError {
	return &ValidationError{Agent: agent, Message: message}
}
