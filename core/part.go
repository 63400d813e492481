package core

import "encoding/json"

// Part represents a polymorphic segment of message content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string `json:"text"`
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// ToolCall describes a tool invocation requested by the model. Input is the
// raw serialized argument payload; typed decoding happens at the dispatch
// boundary, never inside the engine loop.
type ToolCall struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// ToolCallPart wraps a ToolCall as a content part.
type ToolCallPart struct {
	ToolCall ToolCall `json:"tool_call"`
}

// isPart implements the Part interface for ToolCallPart.
func (ToolCallPart) isPart() {}

// ToolResult describes the outcome of a tool call. Error is populated when
// the call failed; a non-empty Error never coexists with a meaningful Value.
type ToolResult struct {
	ID    string `json:"id,omitempty"`   // Matches originating ToolCall ID
	Name  string `json:"name"`           // Tool name
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// ToolResultPart wraps a ToolResult as a content part.
type ToolResultPart struct {
	ToolResult ToolResult `json:"tool_result"`
}

// isPart implements the Part interface for ToolResultPart.
func (ToolResultPart) isPart() {}

// ImagePart is an inline image attachment (base64 encoded).
type ImagePart struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// isPart implements the Part interface for ImagePart.
func (ImagePart) isPart() {}

// FilePart is a file attachment, either inlined (Data, base64) or referenced
// by URI.
type FilePart struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	URI      string `json:"uri,omitempty"`
	Data     string `json:"data,omitempty"`
}

// isPart implements the Part interface for FilePart.
func (FilePart) isPart() {}

// IsAttachment reports whether p is an image or file part. Attachments are
// the only parts the compactor carries forward verbatim into a summary.
func IsAttachment(p Part) bool {
	switch p.(type) {
	case ImagePart, FilePart:
		return true
	default:
		return false
	}
}
