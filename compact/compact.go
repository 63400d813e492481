// Package compact shrinks a growing conversation history into a bounded
// summary. Compaction is a pure function over the message history: it is
// attempted on every engine resumption, short-circuits cheaply when no
// trigger fires, and never fails — missing optional fields degrade the
// affected check rather than erroring.
package compact

import (
	"strings"
	"time"

	"github.com/hupe1980/agentcore/core"
)

// Separator joins per-message digests inside a summary body. Front
// truncation cuts at separator boundaries so no digest is left
// half-rendered.
const Separator = "\n\n---\n\n"

// summaryHeader opens every summary body so models recognize compacted
// context.
const summaryHeader = "Summary of earlier conversation:\n\n"

// ToolSummarizer renders a one-line human-readable description of a tool
// call for inclusion in an assistant digest.
type ToolSummarizer func(call core.ToolCall) string

// Config carries every tunable of the compactor. All limits live here as
// named configuration; none are re-declared inline at call sites.
type Config struct {
	// FudgeFactor is the safety margin (in tokens) added to the history
	// estimate before comparing against the budget.
	FudgeFactor int

	// CacheExpiry is the prompt-cache window: when the gap between the last
	// assistant message and the most recent user prompt exceeds it, the
	// upstream cache has lost its value and compacting proactively is
	// cheaper than paying for a stale cache.
	CacheExpiry time.Duration

	// Per-digest character limits.
	UserTextLimit      int
	AssistantTextLimit int
	ErrorTextLimit     int
	DiffExcerptLimit   int
	ChildOutputLimit   int

	// SummaryFraction bounds the summary body to this fraction of the token
	// budget (converted to characters by the default estimator's ratio).
	SummaryFraction float64

	// NoisyAgentTypes lists spawned agent types whose outputs are dropped
	// from tool-result digests.
	NoisyAgentTypes []string

	// Estimator computes the token footprint of a history.
	Estimator core.TokenEstimator

	// ToolSummarizers maps tool names to digest renderers; unknown tools
	// fall back to "used tool: NAME".
	ToolSummarizers map[string]ToolSummarizer

	// Now supplies the clock (overridable in tests).
	Now func() time.Time
}

// DefaultConfig provides the standard compaction tuning.
var DefaultConfig = Config{
	FudgeFactor:        1000,
	CacheExpiry:        5 * time.Minute,
	UserTextLimit:      2000,
	AssistantTextLimit: 600,
	ErrorTextLimit:     400,
	DiffExcerptLimit:   500,
	ChildOutputLimit:   400,
	SummaryFraction:    0.25,
}

// summaryCharsPerToken converts the token-denominated budget into a
// character target for the summary body.
const summaryCharsPerToken = 4

// Compactor reduces message histories per its configuration. It holds no
// mutable state and is safe for concurrent use.
type Compactor struct {
	cfg Config
}

// New creates a Compactor with DefaultConfig plus optional overrides.
func New(optFns ...func(o *Config)) *Compactor {
	cfg := DefaultConfig
	for _, fn := range optFns {
		fn(&cfg)
	}
	if cfg.Estimator == nil {
		cfg.Estimator = core.EstimateTokens
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ToolSummarizers == nil {
		cfg.ToolSummarizers = defaultToolSummarizers()
	}
	return &Compactor{cfg: cfg}
}

// Compact returns the reduced history for the given token budget. Transient
// control messages are stripped on every call; the full summary pass runs
// only when a trigger condition fires.
func (c *Compactor) Compact(history []core.Message, maxBudget int) []core.Message {
	stripped := stripControl(history)
	if !c.shouldCompact(stripped, maxBudget) {
		return stripped
	}
	return c.summarize(stripped, maxBudget)
}

// stripControl drops messages tagged as transient control markers.
func stripControl(history []core.Message) []core.Message {
	out := make([]core.Message, 0, len(history))
	for _, m := range history {
		if m.HasTag(core.TagControl) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// shouldCompact evaluates the trigger conditions: token budget overflow or
// prompt-cache expiry. The expiry check is skipped when either timestamp is
// absent.
func (c *Compactor) shouldCompact(history []core.Message, maxBudget int) bool {
	if c.cfg.Estimator(history)+c.cfg.FudgeFactor > maxBudget {
		return true
	}

	var lastAssistant, lastPrompt *time.Time
	for _, m := range history {
		switch {
		case m.Role == core.RoleAssistant && m.SentAt != nil:
			lastAssistant = m.SentAt
		case m.HasTag(core.TagUserPrompt) && m.SentAt != nil:
			lastPrompt = m.SentAt
		}
	}
	if lastAssistant == nil || lastPrompt == nil {
		return false
	}
	return lastPrompt.Sub(*lastAssistant) > c.cfg.CacheExpiry
}

// summarize builds the replacement history: one summary message carrying the
// digests (and the most recent attachments), plus the pending instruction
// message with a refreshed timestamp so the very next resumption does not
// re-trigger the cache-expiry condition.
func (c *Compactor) summarize(history []core.Message, maxBudget int) []core.Message {
	now := c.cfg.Now().UTC()

	pendingIdx := pendingInstructionIndex(history)
	attachments := latestAttachments(history)

	var priorSummary string
	var digests []string
	for i, m := range history {
		if i == pendingIdx {
			continue // survives verbatim, no digest needed
		}
		if m.HasTag(core.TagSummary) {
			// Unwrap so summaries compose instead of nesting indefinitely.
			priorSummary = strings.TrimPrefix(m.Text(), summaryHeader)
			continue
		}
		if d := c.digest(m); d != "" {
			digests = append(digests, d)
		}
	}

	sections := digests
	if priorSummary != "" {
		sections = append([]string{priorSummary}, digests...)
	}
	body := strings.Join(sections, Separator)

	target := int(c.cfg.SummaryFraction * float64(maxBudget) * summaryCharsPerToken)
	if target > 0 && len(body) > target {
		body = frontTruncate(body, target)
	}

	parts := make([]core.Part, 0, len(attachments)+1)
	parts = append(parts, core.TextPart{Text: summaryHeader + body})
	parts = append(parts, attachments...)

	out := []core.Message{{
		Role:   core.RoleUser,
		Parts:  parts,
		Tags:   []string{core.TagSummary},
		SentAt: &now,
	}}
	if pendingIdx >= 0 {
		pending := history[pendingIdx]
		pending.SentAt = &now
		out = append(out, pending)
	}
	return out
}

// pendingInstructionIndex finds the most recent user-prompt message not yet
// answered by an assistant turn, or -1.
func pendingInstructionIndex(history []core.Message) int {
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.Role == core.RoleAssistant {
			return -1
		}
		if m.HasTag(core.TagUserPrompt) {
			return i
		}
	}
	return -1
}

// latestAttachments returns the attachments of the most recent user message
// that carried any, for reattachment to the new summary message.
func latestAttachments(history []core.Message) []core.Part {
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.Role != core.RoleUser || m.HasTag(core.TagSummary) {
			continue
		}
		if atts := m.Attachments(); len(atts) > 0 {
			return atts
		}
	}
	return nil
}
