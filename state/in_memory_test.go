package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcore/core"
)

var _ core.StateStore = (*InMemoryStore)(nil)

func TestInMemoryStore_RoundTrip(t *testing.T) {
	store := NewInMemoryStore()

	st := core.NewAgentState("planner", "planner-1", "run-1", "", 10)
	st.Append(core.NewUserMessage("hello"))
	require.NoError(t, store.Put(st))

	got, err := store.Get(st.AgentID)
	require.NoError(t, err)
	assert.Equal(t, st.AgentID, got.AgentID)
	require.Len(t, got.History, 1)

	// Mutating the returned clone must not affect the stored entry.
	got.Append(core.NewUserMessage("extra"))
	again, err := store.Get(st.AgentID)
	require.NoError(t, err)
	assert.Len(t, again.History, 1)
}

func TestInMemoryStore_MissingAndDelete(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get("missing")
	assert.Error(t, err)

	st := core.NewAgentState("worker", "worker-1", "run-1", "", 5)
	require.NoError(t, store.Put(st))
	require.NoError(t, store.Delete(st.AgentID))
	_, err = store.Get(st.AgentID)
	assert.Error(t, err)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(st.AgentID))
}

func TestInMemoryStore_ByParent(t *testing.T) {
	store := NewInMemoryStore()

	parent := core.NewAgentState("main", "main", "run-1", "", 10)
	require.NoError(t, store.Put(parent))

	for i := 0; i < 3; i++ {
		child := core.NewAgentState("worker", "worker", "run-1", parent.AgentID, 5)
		require.NoError(t, store.Put(child))
	}

	children, err := store.ByParent(parent.AgentID)
	require.NoError(t, err)
	assert.Len(t, children, 3)

	none, err := store.ByParent("unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}
