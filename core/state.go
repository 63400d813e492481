package core

// AgentState is the mutable record of one agent run: identity, spawn-tree
// back-reference, ordered message history and remaining budgets.
//
// Contract:
//   - History order is chronological and semantically significant.
//   - ContextTokens is a monotonically tracked estimate maintained by the
//     engine; it is advisory, the compactor recomputes from scratch.
//   - StepsRemaining never goes below zero; reaching zero is terminal.
//   - ParentID is a lookup key into the state store only, never a live
//     pointer. Children report results through return values, not by
//     reaching into the parent.
//
// An AgentState is owned exclusively by the engine instance driving its run;
// no other component mutates it concurrently.
type AgentState struct {
	AgentID   string `json:"agent_id"`
	RunID     string `json:"run_id"`
	ParentID  string `json:"parent_id,omitempty"`
	AgentType string `json:"agent_type"`
	AgentName string `json:"agent_name"`

	History        []Message `json:"history"`
	ContextTokens  int       `json:"context_tokens"`
	StepsRemaining int       `json:"steps_remaining"`
}

// NewAgentState creates the state for a fresh run. Root runs pass an empty
// parentID; spawned children carry their parent's AgentID for spawn-tree
// reconstruction.
func NewAgentState(agentType, agentName, runID, parentID string, maxSteps int) *AgentState {
	return &AgentState{
		AgentID:        NewID(),
		RunID:          runID,
		ParentID:       parentID,
		AgentType:      agentType,
		AgentName:      agentName,
		StepsRemaining: maxSteps,
	}
}

// Append adds a message to the history.
func (s *AgentState) Append(msg Message) {
	s.History = append(s.History, msg)
}

// LastMessage returns the most recent message, or false for an empty history.
func (s *AgentState) LastMessage() (Message, bool) {
	if len(s.History) == 0 {
		return Message{}, false
	}
	return s.History[len(s.History)-1], true
}

// Clone returns a deep copy of the state safe for independent mutation. Part
// values are immutable by convention so the part slices are copied shallowly.
func (s *AgentState) Clone() *AgentState {
	c := *s
	c.History = make([]Message, len(s.History))
	for i, m := range s.History {
		cm := m
		cm.Parts = make([]Part, len(m.Parts))
		copy(cm.Parts, m.Parts)
		if len(m.Tags) > 0 {
			cm.Tags = make([]string, len(m.Tags))
			copy(cm.Tags, m.Tags)
		}
		if m.SentAt != nil {
			t := *m.SentAt
			cm.SentAt = &t
		}
		c.History[i] = cm
	}
	return &c
}

// StateStore is the arena holding agent states keyed by AgentID. ParentID is
// resolved against it to reconstruct the spawn tree; the store never hands
// out live aliases of its entries (implementations clone on read and write).
type StateStore interface {
	Get(agentID string) (*AgentState, error)
	Put(state *AgentState) error
	Delete(agentID string) error

	// ByParent returns the states whose ParentID matches, in unspecified
	// order. Used for spawn-tree inspection, never for mutation.
	ByParent(parentID string) ([]*AgentState, error)
}
