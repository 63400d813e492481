package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSchema(t *testing.T) {
	type params struct {
		Path    string  `json:"path" description:"File to read"`
		Limit   *int    `json:"limit,omitempty"`
		Offset  int     `json:"offset,omitempty"`
		Verbose bool    `json:"verbose"`
		Ratio   float64 `json:"ratio"`
		Skipped string  `json:"-"`
	}

	schema := CreateSchema(params{})
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"type": "string", "description": "File to read"}, props["path"])
	assert.Equal(t, map[string]any{"type": "integer"}, props["limit"])
	assert.Equal(t, map[string]any{"type": "boolean"}, props["verbose"])
	assert.Equal(t, map[string]any{"type": "number"}, props["ratio"])
	assert.NotContains(t, props, "Skipped")

	// Pointers and omitempty are optional; everything else is required.
	assert.ElementsMatch(t, []string{"path", "verbose", "ratio"}, schema["required"])
}

func TestCreateSchema_NonStruct(t *testing.T) {
	schema := CreateSchema("not a struct")
	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
	assert.NotContains(t, schema, "required")
}

func TestValidateParameters_RequiredFields(t *testing.T) {
	t.Run("decoded JSON shape", func(t *testing.T) {
		schema := map[string]any{
			"type":       "object",
			"properties": map[string]any{"text": map[string]any{"type": "string"}},
			"required":   []any{"text"},
		}
		err := ValidateParameters(map[string]any{}, schema)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "text", ve.Field)
	})

	t.Run("struct-derived shape", func(t *testing.T) {
		type params struct {
			Path string `json:"path"`
		}
		schema := CreateSchema(params{})
		err := ValidateParameters(map[string]any{}, schema)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "path", ve.Field)

		assert.NoError(t, ValidateParameters(map[string]any{"path": "main.go"}, schema))
	})
}

func TestValidateParameters_Types(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"count": map[string]any{"type": "integer"},
			"ratio": map[string]any{"type": "number"},
			"flags": map[string]any{"type": "array"},
		},
	}

	assert.NoError(t, ValidateParameters(map[string]any{
		"name":  "x",
		"count": float64(3), // JSON numbers decode as float64
		"ratio": 1.5,
		"flags": []any{"a"},
		"extra": "ignored",
	}, schema))

	err := ValidateParameters(map[string]any{"count": 2.5}, schema)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "count", ve.Field)

	err = ValidateParameters(map[string]any{"name": 42}, schema)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "expected type string")
}

func TestValidateParameters_Enum(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"op": map[string]any{"type": "string", "enum": []any{"add", "sub"}},
		},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"op": "add"}, schema))

	err := ValidateParameters(map[string]any{"op": "pow"}, schema)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "op", ve.Field)
	assert.Contains(t, ve.Message, "not one of the allowed values")
}
