// Package chunk implements lossless recursive splitting of nested structured
// values into ordered, size-bounded fragments for transport. Fragment sizes
// are measured against the value's JSON serialization; concatenating or
// flattening the fragments in order reconstructs the original value exactly.
package chunk

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"unicode/utf8"
)

// Chunk is one fragment of a larger value. Data keeps the shape of the value
// it was split from (string fragments stay strings, array fragments stay
// arrays, object fragments stay objects) so type-appropriate concatenation
// can reassemble the original.
type Chunk struct {
	Data             any `json:"data"`
	SerializedLength int `json:"serialized_length"`
}

// Serialized length overheads of the JSON container syntax.
const (
	stringOverhead = 2 // surrounding quotes
	arrayOverhead  = 2 // surrounding brackets
	objectOverhead = 2 // surrounding braces
)

// Split divides value into ordered fragments whose serialized size stays
// within maxChunkSize. Values that cannot be subdivided without losing type
// fidelity (numbers, booleans, dates, arbitrary structs) are returned as a
// single fragment even when it exceeds the budget.
func Split(value any, maxChunkSize int) []Chunk {
	if maxChunkSize < 1 {
		maxChunkSize = 1
	}
	switch v := value.(type) {
	case string:
		return splitString(v, maxChunkSize)
	case []any:
		return splitSlice(v, maxChunkSize)
	case map[string]any:
		return splitMap(v, maxChunkSize)
	case []byte, json.RawMessage:
		return []Chunk{atom(value)}
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return splitSlice(elems, maxChunkSize)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]any, rv.Len())
			for _, k := range rv.MapKeys() {
				m[k.String()] = rv.MapIndex(k).Interface()
			}
			return splitMap(m, maxChunkSize)
		}
	}
	return []Chunk{atom(value)}
}

// atom wraps an indivisible value as a single fragment.
func atom(value any) Chunk {
	return Chunk{Data: value, SerializedLength: serializedLen(value)}
}

// serializedLen measures the JSON encoding length of v. Unserializable
// values fall back to their fmt rendering so sizing never fails.
func serializedLen(v any) int {
	b, err := json.Marshal(v)
	if err != nil {
		return len(fmt.Sprint(v))
	}
	return len(b)
}

// splitString greedily accumulates runes while the escaped length stays
// within budget, closing the fragment when the next rune would overflow. A
// budget below the empty-string overhead degrades to one rune per fragment.
func splitString(s string, budget int) []Chunk {
	if s == "" {
		return []Chunk{atom(s)}
	}
	if budget < stringOverhead {
		var out []Chunk
		for _, r := range s {
			out = append(out, atom(string(r)))
		}
		return out
	}

	var out []Chunk
	cur := make([]rune, 0, budget)
	curLen := stringOverhead
	flush := func() {
		if len(cur) > 0 {
			out = append(out, atom(string(cur)))
			cur = cur[:0]
			curLen = stringOverhead
		}
	}
	for _, r := range s {
		n := escapedRuneLen(r)
		if curLen+n > budget && len(cur) > 0 {
			flush()
		}
		cur = append(cur, r)
		curLen += n
	}
	flush()
	return out
}

// escapedRuneLen returns the number of bytes r occupies inside a JSON string
// as produced by encoding/json (HTML escaping included).
func escapedRuneLen(r rune) int {
	switch r {
	case '"', '\\', '\n', '\r', '\t':
		return 2
	case '<', '>', '&', '\u2028', '\u2029':
		return 6
	}
	if r < 0x20 {
		return 6 // \u00XX
	}
	return utf8.RuneLen(r)
}

// splitSlice packs whole elements into array-shaped fragments. An element
// whose own serialized size exceeds the budget is split recursively and each
// sub-fragment spliced in as its own single-element array, preserving order;
// packing resumes with a fresh fragment afterwards.
func splitSlice(elems []any, budget int) []Chunk {
	if len(elems) == 0 {
		return []Chunk{atom(elems)}
	}

	var out []Chunk
	var cur []any
	curLen := arrayOverhead
	flush := func() {
		if len(cur) > 0 {
			out = append(out, atom(cur))
			cur = nil
			curLen = arrayOverhead
		}
	}
	for _, el := range elems {
		elLen := serializedLen(el)
		if arrayOverhead+elLen > budget {
			flush()
			inner := budget - arrayOverhead
			for _, sub := range Split(el, inner) {
				out = append(out, atom([]any{sub.Data}))
			}
			continue
		}
		cost := elLen
		if len(cur) > 0 {
			cost++ // separating comma
		}
		if curLen+cost > budget {
			flush()
			cost = elLen
		}
		cur = append(cur, el)
		curLen += cost
	}
	flush()
	return out
}

// splitMap packs whole key/value pairs into object-shaped fragments in
// sorted key order (matching encoding/json's deterministic map encoding). A
// value whose serialized form plus key overhead exceeds the budget is split
// recursively with the same key re-attached to every sub-fragment.
func splitMap(m map[string]any, budget int) []Chunk {
	if len(m) == 0 {
		return []Chunk{atom(m)}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Chunk
	cur := map[string]any{}
	curLen := objectOverhead
	flush := func() {
		if len(cur) > 0 {
			out = append(out, atom(cur))
			cur = map[string]any{}
			curLen = objectOverhead
		}
	}
	for _, k := range keys {
		val := m[k]
		keyLen := serializedLen(k) + 1 // encoded key plus colon
		pairLen := keyLen + serializedLen(val)
		if objectOverhead+pairLen > budget {
			flush()
			inner := budget - objectOverhead - keyLen
			for _, sub := range Split(val, inner) {
				out = append(out, atom(map[string]any{k: sub.Data}))
			}
			continue
		}
		cost := pairLen
		if len(cur) > 0 {
			cost++ // separating comma
		}
		if curLen+cost > budget {
			flush()
			cost = pairLen
		}
		cur[k] = val
		curLen += cost
	}
	flush()
	return out
}
