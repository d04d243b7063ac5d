package schemareg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "nullable scalar",
			in:   map[string]any{"type": "string", "nullable": true},
			want: map[string]any{"type": []any{"string", "null"}},
		},
		{
			name: "nullable enum",
			in:   map[string]any{"type": "string", "nullable": true, "enum": []any{"a"}},
			want: map[string]any{"type": []any{"string", "null"}, "enum": []any{"a", nil}},
		},
		{
			name: "nullable false is dropped",
			in:   map[string]any{"type": "integer", "nullable": false},
			want: map[string]any{"type": "integer"},
		},
		{
			name: "boolean exclusive bounds",
			in: map[string]any{
				"type": "number", "minimum": 1.0, "exclusiveMinimum": true,
				"maximum": 9.0, "exclusiveMaximum": false,
			},
			want: map[string]any{"type": "number", "exclusiveMinimum": 1.0, "maximum": 9.0},
		},
		{
			name: "numeric exclusive bounds are kept",
			in:   map[string]any{"exclusiveMinimum": 3.0},
			want: map[string]any{"exclusiveMinimum": 3.0},
		},
		{
			name: "binary strings accept anything",
			in: map[string]any{"type": "object", "properties": map[string]any{
				"file": map[string]any{"type": "string", "format": "binary"},
			}},
			want: map[string]any{"type": "object", "properties": map[string]any{
				"file": map[string]any{},
			}},
		},
		{
			name: "enum members are data",
			in:   map[string]any{"enum": []any{map[string]any{"nullable": true}}},
			want: map[string]any{"enum": []any{map[string]any{"nullable": true}}},
		},
		{
			name: "nested items",
			in:   map[string]any{"type": "array", "items": map[string]any{"type": "integer", "nullable": true}},
			want: map[string]any{"type": "array", "items": map[string]any{"type": []any{"integer", "null"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in, ""))
		})
	}
}

func TestNormalize_RewritesLocalRefs(t *testing.T) {
	got := normalize(map[string]any{
		"allOf": []any{map[string]any{"$ref": "#/components/schemas/Pet"}},
	}, documentURL)
	assert.Equal(t, map[string]any{
		"allOf": []any{map[string]any{"$ref": documentURL + "#/components/schemas/Pet"}},
	}, got)
}

func TestResolvePointer(t *testing.T) {
	doc := map[string]any{"components": map[string]any{"schemas": map[string]any{
		"a/b": map[string]any{"type": "string"},
		"L":   map[string]any{"allOf": []any{"x", "y"}},
	}}}

	v, err := resolvePointer(doc, "#/components/schemas/a~1b")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "string"}, v)

	v, err = resolvePointer(doc, documentURL+"#/components/schemas/L/allOf/1")
	require.NoError(t, err)
	assert.Equal(t, "y", v)

	_, err = resolvePointer(doc, "#/components/schemas/missing")
	assert.Error(t, err)
	_, err = resolvePointer(doc, "other.json")
	assert.Error(t, err)
}
