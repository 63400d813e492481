package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation roles used throughout the core.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Lifecycle tags attached to messages. Tags classify a message's role in the
// run lifecycle; they are orthogonal to the conversational role.
const (
	// TagUserPrompt marks the message carrying the caller's prompt for the
	// current turn.
	TagUserPrompt = "user-prompt"

	// TagInstructions marks the standing instruction/system text injected at
	// run start.
	TagInstructions = "instructions"

	// TagSubagentSpawn marks a tool message holding merged child run results.
	TagSubagentSpawn = "subagent-spawn"

	// TagControl marks transient control messages meant for exactly one
	// resumption. The compactor strips them on every pass.
	TagControl = "control"

	// TagSummary is the structural marker identifying a compaction summary so
	// later passes compose with it instead of nesting summaries.
	TagSummary = "history-summary"
)

// Message is one entry of an agent's conversation history: a role, an ordered
// sequence of heterogeneous parts, lifecycle tags and an optional send time.
// Messages are immutable once appended; only compaction replaces them, and it
// does so by rebuilding the history rather than editing entries in place.
type Message struct {
	Role   string     `json:"role"`
	Parts  []Part     `json:"parts"`
	Tags   []string   `json:"tags,omitempty"`
	SentAt *time.Time `json:"sent_at,omitempty"`
}

// NewUserMessage creates a user message with a single text part, tagged as
// the current prompt and timestamped now.
func NewUserMessage(text string) Message {
	now := time.Now().UTC()
	return Message{
		Role:   RoleUser,
		Parts:  []Part{TextPart{Text: text}},
		Tags:   []string{TagUserPrompt},
		SentAt: &now,
	}
}

// NewInstructionsMessage creates the standing instruction message injected at
// the head of a fresh history.
func NewInstructionsMessage(text string) Message {
	now := time.Now().UTC()
	return Message{
		Role:   RoleUser,
		Parts:  []Part{TextPart{Text: text}},
		Tags:   []string{TagInstructions},
		SentAt: &now,
	}
}

// NewAssistantMessage creates an assistant message from model output text and
// any tool calls the model emitted, in that order.
func NewAssistantMessage(text string, calls []ToolCall) Message {
	now := time.Now().UTC()
	parts := make([]Part, 0, len(calls)+1)
	if text != "" {
		parts = append(parts, TextPart{Text: text})
	}
	for _, c := range calls {
		parts = append(parts, ToolCallPart{ToolCall: c})
	}
	return Message{Role: RoleAssistant, Parts: parts, SentAt: &now}
}

// NewToolResultMessage wraps a single tool result as a tool-role message.
func NewToolResultMessage(result ToolResult) Message {
	now := time.Now().UTC()
	return Message{
		Role:   RoleTool,
		Parts:  []Part{ToolResultPart{ToolResult: result}},
		SentAt: &now,
	}
}

// HasTag reports whether the message carries the given lifecycle tag.
func (m Message) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// WithTag returns a copy of the message with the tag appended (no-op when
// already present).
func (m Message) WithTag(tag string) Message {
	if m.HasTag(tag) {
		return m
	}
	tags := make([]string, len(m.Tags), len(m.Tags)+1)
	copy(tags, m.Tags)
	m.Tags = append(tags, tag)
	return m
}

// Text concatenates all text parts in order.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// ToolCalls returns the tool call parts preserving their original order.
func (m Message) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range m.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc.ToolCall)
		}
	}
	return calls
}

// ToolResults returns the tool result parts preserving their original order.
func (m Message) ToolResults() []ToolResult {
	var results []ToolResult
	for _, p := range m.Parts {
		if tr, ok := p.(ToolResultPart); ok {
			results = append(results, tr.ToolResult)
		}
	}
	return results
}

// Attachments returns the image/file parts preserving their original order.
func (m Message) Attachments() []Part {
	var atts []Part
	for _, p := range m.Parts {
		if IsAttachment(p) {
			atts = append(atts, p)
		}
	}
	return atts
}

// NewID generates a unique identifier for agents, runs and tool calls.
func NewID() string { return uuid.NewString() }
