package compact

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/agentcore/core"
)

// digest renders one message as a compact textual section of the summary
// body. Messages that carry nothing salient digest to the empty string and
// are dropped.
func (c *Compactor) digest(m core.Message) string {
	switch m.Role {
	case core.RoleUser:
		return c.digestUser(m)
	case core.RoleAssistant:
		return c.digestAssistant(m)
	case core.RoleTool:
		return c.digestToolResults(m)
	default:
		return ""
	}
}

func (c *Compactor) digestUser(m core.Message) string {
	text := Truncate(m.Text(), c.cfg.UserTextLimit)
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("User: ")
	b.WriteString(text)
	if n := len(m.Attachments()); n > 0 {
		fmt.Fprintf(&b, "\n[message carried %d attachment(s)]", n)
	}
	return b.String()
}

func (c *Compactor) digestAssistant(m core.Message) string {
	text := Truncate(StripReasoning(m.Text()), c.cfg.AssistantTextLimit)
	calls := m.ToolCalls()
	if text == "" && len(calls) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Assistant: ")
	b.WriteString(text)
	for _, call := range calls {
		b.WriteString("\n- ")
		b.WriteString(c.summarizeToolCall(call))
	}
	return b.String()
}

// summarizeToolCall renders a one-line description of a tool call via the
// configured dispatch table, defaulting to "used tool: NAME" for
// unrecognized tools.
func (c *Compactor) summarizeToolCall(call core.ToolCall) string {
	if fn, ok := c.cfg.ToolSummarizers[call.Name]; ok {
		if line := fn(call); line != "" {
			return line
		}
	}
	return "used tool: " + call.Name
}

// digestToolResults keeps only the salient facts of tool results: error
// text, non-zero exit codes, user answers, diff excerpts and spawned child
// outputs. Bulky successful payloads digest to nothing.
func (c *Compactor) digestToolResults(m core.Message) string {
	var lines []string
	for _, tr := range m.ToolResults() {
		if line := c.digestToolResult(tr); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func (c *Compactor) digestToolResult(tr core.ToolResult) string {
	if tr.Error != "" {
		return fmt.Sprintf("Tool %s failed: %s", tr.Name, Truncate(tr.Error, c.cfg.ErrorTextLimit))
	}

	switch v := tr.Value.(type) {
	case []core.ChildResult:
		return c.digestChildResults(v)
	case map[string]any:
		return c.digestResultFields(tr.Name, v)
	}
	return ""
}

// digestResultFields inspects conventional result fields emitted by the
// built-in coding tools.
func (c *Compactor) digestResultFields(toolName string, fields map[string]any) string {
	var lines []string

	if code, ok := numberField(fields, "exit_code"); ok && code != 0 {
		lines = append(lines, fmt.Sprintf("Command exited with code %d", code))
		if stderr, ok := fields["stderr"].(string); ok && stderr != "" {
			lines = append(lines, Truncate(stderr, c.cfg.ErrorTextLimit))
		}
	}
	if answer, ok := fields["answer"]; ok {
		s, _ := answer.(string)
		if s == "" {
			lines = append(lines, "User skipped the question")
		} else {
			lines = append(lines, fmt.Sprintf("User answered: %q", Truncate(s, c.cfg.ErrorTextLimit)))
		}
	}
	if diff, ok := fields["diff"].(string); ok && diff != "" {
		lines = append(lines, fmt.Sprintf("Diff from %s:\n%s", toolName, Truncate(diff, c.cfg.DiffExcerptLimit)))
	}
	return strings.Join(lines, "\n")
}

// digestChildResults includes spawned child outputs except for agent types
// on the noise blacklist, with reasoning markup stripped and length capped.
func (c *Compactor) digestChildResults(children []core.ChildResult) string {
	var lines []string
	for _, child := range children {
		if c.isNoisy(child.AgentType) {
			continue
		}
		switch o := child.Outcome.(type) {
		case core.Success:
			text := StripReasoning(stringifyValue(o.Value))
			lines = append(lines, fmt.Sprintf("Agent %s (%s): %s",
				child.AgentName, child.AgentType, Truncate(text, c.cfg.ChildOutputLimit)))
		case core.Failure:
			lines = append(lines, fmt.Sprintf("Agent %s (%s) failed: %s",
				child.AgentName, child.AgentType, Truncate(o.Message, c.cfg.ErrorTextLimit)))
		}
	}
	return strings.Join(lines, "\n")
}

func (c *Compactor) isNoisy(agentType string) bool {
	for _, t := range c.cfg.NoisyAgentTypes {
		if t == agentType {
			return true
		}
	}
	return false
}

// numberField reads a numeric field that may arrive as int or float64
// (post-JSON decoding).
func numberField(fields map[string]any, key string) (int, bool) {
	switch n := fields[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func stringifyValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}

// defaultToolSummarizers covers the built-in coding-assistant tools. Callers
// extend or replace the table through Config.ToolSummarizers.
func defaultToolSummarizers() map[string]ToolSummarizer {
	pathLine := func(verb string) ToolSummarizer {
		return func(call core.ToolCall) string {
			if path, ok := inputField(call, "path"); ok {
				return fmt.Sprintf("%s %s", verb, path)
			}
			return ""
		}
	}
	return map[string]ToolSummarizer{
		"read_file":  pathLine("read"),
		"write_file": pathLine("wrote"),
		"edit_file":  pathLine("edited"),
		"list_dir":   pathLine("listed"),
		"run_command": func(call core.ToolCall) string {
			if cmd, ok := inputField(call, "command"); ok {
				return fmt.Sprintf("ran command: %s", cmd)
			}
			return ""
		},
		"ask_user": func(call core.ToolCall) string {
			if q, ok := inputField(call, "question"); ok {
				return fmt.Sprintf("asked the user: %s", q)
			}
			return ""
		},
		"spawn_agents": func(call core.ToolCall) string {
			return "spawned sub-agents"
		},
	}
}

// inputField decodes one string field from a tool call's raw input.
func inputField(call core.ToolCall, key string) (string, bool) {
	if len(call.Input) == 0 {
		return "", false
	}
	var fields map[string]any
	if err := json.Unmarshal(call.Input, &fields); err != nil {
		return "", false
	}
	s, ok := fields[key].(string)
	return s, ok && s != ""
}
