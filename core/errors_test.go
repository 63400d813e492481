package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAborted(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"aborted error", &AbortedError{Err: context.Canceled}, true},
		{"wrapped aborted error", fmt.Errorf("outer: %w", &AbortedError{}), true},
		{"bare canceled", context.Canceled, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"ordinary error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAborted(tt.err))
		})
	}
}

func TestAbortedError_Unwrap(t *testing.T) {
	err := &AbortedError{Err: context.Canceled}
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "run aborted")
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError("planner", "step program yielded no directive")
	assert.Contains(t, err.Error(), "planner")
	assert.Contains(t, err.Error(), "no directive")

	anon := &ValidationError{Message: "bad spawn request"}
	assert.Equal(t, "validation error: bad spawn request", anon.Error())
}

func TestModelCallLimiter(t *testing.T) {
	l := NewModelCallLimiter(2)
	assert.NoError(t, l.Increment())
	assert.NoError(t, l.Increment())
	assert.Error(t, l.Increment())
	assert.Equal(t, 3, l.Count())

	unlimited := NewModelCallLimiter(0)
	for i := 0; i < 10; i++ {
		assert.NoError(t, unlimited.Increment())
	}
	assert.Equal(t, -1, unlimited.Remaining())
}
