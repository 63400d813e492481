package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCallLimiter_EnforcesMax(t *testing.T) {
	l := NewModelCallLimiter(2)

	require.NoError(t, l.Increment())
	require.NoError(t, l.Increment())
	assert.Equal(t, 0, l.Remaining())

	err := l.Increment()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded max model calls: 2")
}

func TestModelCallLimiter_ZeroMeansUnlimited(t *testing.T) {
	l := NewModelCallLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Increment())
	}
	assert.Equal(t, 100, l.Count())
	assert.Equal(t, -1, l.Remaining())
}
