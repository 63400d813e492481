package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserMessage(t *testing.T) {
	m := NewUserMessage("hello")
	assert.Equal(t, RoleUser, m.Role)
	assert.Equal(t, "hello", m.Text())
	assert.True(t, m.HasTag(TagUserPrompt))
	require.NotNil(t, m.SentAt)
	assert.WithinDuration(t, time.Now().UTC(), *m.SentAt, time.Second)
}

func TestNewAssistantMessage_TextAndToolCalls(t *testing.T) {
	calls := []ToolCall{
		{ID: "c1", Name: "read_file", Input: json.RawMessage(`{"path":"a.go"}`)},
		{ID: "c2", Name: "run_command", Input: json.RawMessage(`{"cmd":"ls"}`)},
	}
	m := NewAssistantMessage("working on it", calls)

	assert.Equal(t, RoleAssistant, m.Role)
	assert.Equal(t, "working on it", m.Text())

	got := m.ToolCalls()
	require.Len(t, got, 2)
	assert.Equal(t, "read_file", got[0].Name)
	assert.Equal(t, "run_command", got[1].Name)
}

func TestNewAssistantMessage_EmptyTextOmitted(t *testing.T) {
	m := NewAssistantMessage("", []ToolCall{{Name: "t"}})
	require.Len(t, m.Parts, 1)
	_, ok := m.Parts[0].(ToolCallPart)
	assert.True(t, ok)
}

func TestMessage_WithTag(t *testing.T) {
	m := NewUserMessage("x")
	tagged := m.WithTag(TagControl)

	assert.True(t, tagged.HasTag(TagControl))
	assert.True(t, tagged.HasTag(TagUserPrompt))
	// Original is unchanged.
	assert.False(t, m.HasTag(TagControl))

	// Adding an existing tag is a no-op.
	again := tagged.WithTag(TagControl)
	assert.Equal(t, tagged.Tags, again.Tags)
}

func TestMessage_Attachments(t *testing.T) {
	m := Message{
		Role: RoleUser,
		Parts: []Part{
			TextPart{Text: "see attached"},
			ImagePart{MimeType: "image/png", Data: "aGk="},
			FilePart{Name: "notes.txt", Data: "bm90ZXM="},
		},
	}
	atts := m.Attachments()
	require.Len(t, atts, 2)
	assert.IsType(t, ImagePart{}, atts[0])
	assert.IsType(t, FilePart{}, atts[1])
}

func TestNewToolResultMessage(t *testing.T) {
	m := NewToolResultMessage(ToolResult{ID: "c1", Name: "read_file", Value: "contents"})
	assert.Equal(t, RoleTool, m.Role)
	results := m.ToolResults()
	require.Len(t, results, 1)
	assert.Equal(t, "read_file", results[0].Name)
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
