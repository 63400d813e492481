package chunk

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_StringRoundTrip(t *testing.T) {
	original := strings.Repeat("abcdef", 10) // 60 chars
	chunks := Split(original, 30)

	require.GreaterOrEqual(t, len(chunks), 2)

	var joined strings.Builder
	for _, c := range chunks {
		s, ok := c.Data.(string)
		require.True(t, ok, "string fragments keep string shape")
		assert.LessOrEqual(t, c.SerializedLength, 30)
		joined.WriteString(s)
	}
	assert.Equal(t, original, joined.String())
}

func TestSplit_StringBoundaryCharNotLost(t *testing.T) {
	// 29 serialized chars fit per fragment with budget 31; the rune that
	// would straddle the boundary must open the next fragment, not vanish.
	original := strings.Repeat("x", 100)
	chunks := Split(original, 31)

	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Data.(string))
	}
	assert.Equal(t, original, joined.String())
}

func TestSplit_StringEscapedLengthCounted(t *testing.T) {
	// Quotes escape to two bytes each; 10 of them serialize to 22 bytes.
	original := strings.Repeat(`"`, 10)
	chunks := Split(original, 10)

	require.Greater(t, len(chunks), 1)
	var joined strings.Builder
	for _, c := range chunks {
		assert.LessOrEqual(t, c.SerializedLength, 10)
		joined.WriteString(c.Data.(string))
	}
	assert.Equal(t, original, joined.String())
}

func TestSplit_StringTinyBudgetOneRunePerFragment(t *testing.T) {
	chunks := Split("abc", 1)
	require.Len(t, chunks, 3)
	assert.Equal(t, "a", chunks[0].Data)
	assert.Equal(t, "b", chunks[1].Data)
	assert.Equal(t, "c", chunks[2].Data)
}

func TestSplit_ArrayRoundTrip(t *testing.T) {
	original := []any{"1", "2", "3333333333", "4", "5"}
	chunks := Split(original, 15)

	require.GreaterOrEqual(t, len(chunks), 2)

	var flattened []any
	for _, c := range chunks {
		arr, ok := c.Data.([]any)
		require.True(t, ok, "array fragments keep array shape")
		assert.LessOrEqual(t, c.SerializedLength, 15)
		flattened = append(flattened, arr...)
	}

	var joined, want strings.Builder
	for _, el := range flattened {
		joined.WriteString(el.(string))
	}
	for _, el := range original {
		want.WriteString(el.(string))
	}
	assert.True(t, strings.HasPrefix(joined.String(), want.String()) || joined.String() == want.String())
	assert.Equal(t, want.String(), joined.String())
}

func TestSplit_ArrayOversizedElementRecursed(t *testing.T) {
	big := strings.Repeat("z", 50)
	original := []any{"a", big, "b"}
	chunks := Split(original, 20)

	// Order preserved: "a" first, the z-fragments, then "b".
	var flattened []string
	for _, c := range chunks {
		for _, el := range c.Data.([]any) {
			flattened = append(flattened, el.(string))
		}
	}
	assert.Equal(t, "a", flattened[0])
	assert.Equal(t, "b", flattened[len(flattened)-1])
	assert.Equal(t, big, strings.Join(flattened[1:len(flattened)-1], ""))
}

func TestSplit_ObjectRoundTrip(t *testing.T) {
	original := map[string]any{
		"a": strings.Repeat("aaa", 10),
		"b": strings.Repeat("bbb", 10),
	}
	chunks := Split(original, 40)

	require.GreaterOrEqual(t, len(chunks), 2)

	joined := map[string]string{}
	for _, c := range chunks {
		obj, ok := c.Data.(map[string]any)
		require.True(t, ok, "object fragments keep object shape")
		assert.LessOrEqual(t, c.SerializedLength, 40)
		for k, v := range obj {
			joined[k] += v.(string)
		}
	}
	assert.Equal(t, original["a"], joined["a"])
	assert.Equal(t, original["b"], joined["b"])
}

func TestSplit_ObjectOversizedValueKeepsKey(t *testing.T) {
	original := map[string]any{"log": strings.Repeat("line ", 20)}
	chunks := Split(original, 25)

	require.Greater(t, len(chunks), 1)
	var rebuilt strings.Builder
	for _, c := range chunks {
		obj := c.Data.(map[string]any)
		require.Contains(t, obj, "log", "every sub-fragment re-attaches the key")
		rebuilt.WriteString(obj["log"].(string))
	}
	assert.Equal(t, original["log"], rebuilt.String())
}

func TestSplit_OpaqueValuesAtomic(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"int", 1234567890},
		{"bool", true},
		{"nil", nil},
		{"time", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.value, 3)
			require.Len(t, chunks, 1, "opaque values are never subdivided")
			assert.Equal(t, tt.value, chunks[0].Data)
		})
	}
}

func TestSplit_EmptyContainers(t *testing.T) {
	assert.Len(t, Split("", 10), 1)
	assert.Len(t, Split([]any{}, 10), 1)
	assert.Len(t, Split(map[string]any{}, 10), 1)
}

func TestSplit_NestedStructure(t *testing.T) {
	original := []any{
		map[string]any{"name": "alpha", "body": strings.Repeat("q", 60)},
		"tail",
	}
	chunks := Split(original, 30)

	require.Greater(t, len(chunks), 1)
	var body strings.Builder
	sawTail := false
	for _, c := range chunks {
		for _, el := range c.Data.([]any) {
			switch v := el.(type) {
			case map[string]any:
				if s, ok := v["body"].(string); ok {
					body.WriteString(s)
				}
			case string:
				sawTail = v == "tail"
			}
		}
	}
	assert.Equal(t, strings.Repeat("q", 60), body.String())
	assert.True(t, sawTail)
}
