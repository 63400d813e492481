package core

import (
	"fmt"
	"sync"
)

// ModelCallLimiter caps the number of completion-service calls one run may
// make. A zero max means unlimited.
type ModelCallLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewModelCallLimiter creates a limiter allowing up to max calls.
func NewModelCallLimiter(max int) *ModelCallLimiter {
	return &ModelCallLimiter{max: max}
}

// Increment counts one call, returning an error once the limit is exceeded.
func (l *ModelCallLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	if l.max > 0 && l.count > l.max {
		return fmt.Errorf("exceeded max model calls: %d", l.max)
	}
	return nil
}

// Count returns the number of calls made so far.
func (l *ModelCallLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Remaining returns how many calls are left, or -1 when unlimited.
func (l *ModelCallLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.max == 0 {
		return -1
	}
	return l.max - l.count
}
