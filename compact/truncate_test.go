package compact

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate_WithinLimitUnchanged(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, "", Truncate("", 10))
}

func TestTruncate_Bound(t *testing.T) {
	tests := []struct {
		length int
		limit  int
	}{
		{100, 80},
		{1000, 100},
		{50000, 200},
		{500, 499},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("len%d_limit%d", tt.length, tt.limit), func(t *testing.T) {
			text := strings.Repeat("a", tt.length)
			got := Truncate(text, tt.limit)
			assert.LessOrEqual(t, len([]rune(got)), tt.limit)
			assert.Contains(t, got, "characters omitted")
		})
	}
}

func TestTruncate_HeadTailSplit(t *testing.T) {
	text := strings.Repeat("H", 500) + strings.Repeat("T", 500)
	got := Truncate(text, 100)

	assert.True(t, strings.HasPrefix(got, "H"))
	assert.True(t, strings.HasSuffix(got, "T"))
	// Roughly 80/20: far more head than tail survives.
	assert.Greater(t, strings.Count(got, "H"), 2*strings.Count(got, "T"))
}

func TestTruncate_OmittedCountAccurate(t *testing.T) {
	text := strings.Repeat("x", 1000)
	got := Truncate(text, 100)

	var omitted int
	_, err := fmt.Sscanf(got[strings.Index(got, "["):], "[%d characters omitted]", &omitted)
	require.NoError(t, err)
	kept := len([]rune(got)) - len([]rune(fmt.Sprintf(" ... [%d characters omitted] ... ", omitted)))
	assert.Equal(t, 1000-kept, omitted)
}

func TestStripReasoning(t *testing.T) {
	in := "before <thinking>secret\nplans</thinking> after"
	assert.Equal(t, "before  after", StripReasoning(in))

	multi := "<thinking>a</thinking>visible<thinking>b</thinking>"
	assert.Equal(t, "visible", StripReasoning(multi))

	assert.Equal(t, "plain", StripReasoning("plain"))
}

func TestFrontTruncate_CutsAtSeparator(t *testing.T) {
	sections := []string{
		"oldest digest " + strings.Repeat("o", 50),
		"middle digest " + strings.Repeat("m", 50),
		"newest digest " + strings.Repeat("n", 50),
	}
	body := strings.Join(sections, Separator)

	got := frontTruncate(body, 120)

	assert.LessOrEqual(t, len(got), 120+len(Separator))
	assert.True(t, strings.HasPrefix(got, "[earlier content omitted]"))
	assert.Contains(t, got, "newest digest")
	assert.NotContains(t, got, "oldest digest")
	// The surviving digest is intact, not half-rendered.
	assert.Contains(t, got, sections[2])
}

func TestFrontTruncate_NoBoundaryHardCut(t *testing.T) {
	body := strings.Repeat("z", 500)
	got := frontTruncate(body, 100)
	assert.LessOrEqual(t, len(got), 100)
	assert.True(t, strings.HasPrefix(got, "[earlier content omitted]"))
}
