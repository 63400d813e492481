package compact

import (
	"fmt"
	"regexp"
	"strings"
)

// headShare is the fraction of the kept characters taken from the start of
// the text; the remainder comes from the end. Prefixes carry the intent,
// suffixes carry the conclusion.
const headShare = 0.8

// reasoningRE matches internal-reasoning markup spans inside assistant text.
var reasoningRE = regexp.MustCompile(`(?s)<thinking>.*?</thinking>`)

// Truncate bounds text to limit characters. Within the limit the text is
// returned unchanged; otherwise roughly 80% of the limit is kept from the
// start and 20% from the end with a centered notice stating how many
// characters were omitted. The result never exceeds limit characters.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	// The notice length depends on the omitted count, which depends on the
	// notice length; iterate to the fixed point (the digit width stabilizes
	// after a couple of rounds).
	omitted := 0
	var notice string
	var keep int
	for {
		notice = fmt.Sprintf(" ... [%d characters omitted] ... ", omitted)
		keep = limit - len([]rune(notice))
		next := len(runes) - keep
		if next <= omitted {
			break
		}
		omitted = next
	}
	if keep < 2 {
		clipped := []rune(notice)
		if len(clipped) > limit {
			clipped = clipped[:limit]
		}
		return string(clipped)
	}

	head := int(float64(keep) * headShare)
	tail := keep - head
	return string(runes[:head]) + notice + string(runes[len(runes)-tail:])
}

// StripReasoning removes internal-reasoning markup spans from assistant
// text.
func StripReasoning(text string) string {
	return strings.TrimSpace(reasoningRE.ReplaceAllString(text, ""))
}

// frontTruncate trims body to at most target characters by dropping the
// oldest content, preferring a clean separator boundary so no digest is left
// half-rendered. A notice stating that content was omitted is prepended.
func frontTruncate(body string, target int) string {
	const notice = "[earlier content omitted]" + Separator
	allowed := target - len(notice)
	if allowed <= 0 {
		return notice
	}

	// Walk separator positions until the remainder fits.
	offset := 0
	for len(body)-offset > allowed {
		next := strings.Index(body[offset:], Separator)
		if next < 0 {
			// No boundary left; hard-cut the oldest characters.
			offset = len(body) - allowed
			break
		}
		offset += next + len(Separator)
	}
	return notice + body[offset:]
}
