package state

import (
	"fmt"
	"sync"

	"github.com/hupe1980/agentcore/core"
)

// InMemoryStore is a volatile StateStore implementation storing agent states
// in a process local map. It is safe for concurrent access and best suited
// for tests or single-process runs. Each returned state is cloned to prevent
// external mutation of internal entries.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*core.AgentState
}

// NewInMemoryStore constructs an empty in‑memory state store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*core.AgentState)}
}

// Get returns a clone of the stored state for the given agent.
func (s *InMemoryStore) Get(agentID string) (*core.AgentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[agentID]
	if !ok {
		return nil, fmt.Errorf("agent state %s not found", agentID)
	}
	return st.Clone(), nil
}

// Put stores a clone of the provided state snapshot, overwriting any
// previous entry for the same agent.
func (s *InMemoryStore) Put(st *core.AgentState) error {
	if st == nil || st.AgentID == "" {
		return fmt.Errorf("state must have an agent id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.AgentID] = st.Clone()
	return nil
}

// Delete removes the state for the given agent. Deleting a missing entry is
// a no-op.
func (s *InMemoryStore) Delete(agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, agentID)
	return nil
}

// ByParent returns clones of all states whose ParentID matches.
func (s *InMemoryStore) ByParent(parentID string) ([]*core.AgentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.AgentState
	for _, st := range s.states {
		if st.ParentID == parentID {
			out = append(out, st.Clone())
		}
	}
	return out, nil
}
