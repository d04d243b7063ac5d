package schemareg

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Keywords whose values are instance data rather than subschemas.
var dataKeywords = map[string]bool{
	"enum":     true,
	"const":    true,
	"default":  true,
	"example":  true,
	"examples": true,
}

// toJSONValue converts v into its generic JSON form (maps, slices, float64,
// string, bool, nil).
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// normalize rewrites OpenAPI 3.0 schema dialect into JSON Schema 2020-12:
// nullable becomes a "null" type member, boolean exclusive bounds become
// numeric ones, and binary string schemas accept anything. When base is set,
// local references ("#/...") are made absolute against it.
func normalize(v any, base string) any {
	switch node := v.(type) {
	case map[string]any:
		return normalizeSchema(node, base)
	case []any:
		out := make([]any, len(node))
		for i, item := range node {
			out[i] = normalize(item, base)
		}
		return out
	}
	return v
}

func normalizeSchema(m map[string]any, base string) any {
	if isBinary(m) {
		return map[string]any{}
	}

	out := make(map[string]any, len(m))
	for k, val := range m {
		if dataKeywords[k] {
			out[k] = val
			continue
		}
		out[k] = normalize(val, base)
	}

	if nullable, ok := out["nullable"].(bool); ok {
		delete(out, "nullable")
		if nullable {
			makeNullable(out)
		}
	}
	exclusiveBound(out, "exclusiveMinimum", "minimum")
	exclusiveBound(out, "exclusiveMaximum", "maximum")

	if ref, ok := out["$ref"].(string); ok && base != "" && strings.HasPrefix(ref, "#") {
		out["$ref"] = base + ref
	}
	return out
}

func makeNullable(m map[string]any) {
	switch t := m["type"].(type) {
	case string:
		m["type"] = []any{t, "null"}
	case []any:
		if !slices.Contains(t, any("null")) {
			m["type"] = append(slices.Clone(t), "null")
		}
	}
	if enum, ok := m["enum"].([]any); ok && !slices.Contains(enum, nil) {
		m["enum"] = append(slices.Clone(enum), nil)
	}
}

// exclusiveBound turns {minimum: 5, exclusiveMinimum: true} into
// {exclusiveMinimum: 5}.
func exclusiveBound(m map[string]any, exclusive, inclusive string) {
	flag, ok := m[exclusive].(bool)
	if !ok {
		return
	}
	delete(m, exclusive)
	if bound, ok := m[inclusive]; ok && flag {
		m[exclusive] = bound
		delete(m, inclusive)
	}
}

// isBinary reports whether the schema describes an opaque byte payload.
func isBinary(m map[string]any) bool {
	if m["format"] != "binary" {
		return false
	}
	switch t := m["type"].(type) {
	case nil:
		return true
	case string:
		return t == "string"
	case []any:
		return slices.Contains(t, any("string"))
	}
	return false
}

// resolvePointer follows a "#/a/b" style reference into doc.
func resolvePointer(doc any, ref string) (any, error) {
	_, frag, ok := strings.Cut(ref, "#")
	if !ok {
		return nil, fmt.Errorf("schemareg: unsupported reference %q", ref)
	}
	node := doc
	for _, tok := range strings.Split(strings.TrimPrefix(frag, "/"), "/") {
		if tok == "" {
			continue
		}
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		switch n := node.(type) {
		case map[string]any:
			next, found := n[tok]
			if !found {
				return nil, fmt.Errorf("schemareg: reference %q not found", ref)
			}
			node = next
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(n) {
				return nil, fmt.Errorf("schemareg: reference %q not found", ref)
			}
			node = n[idx]
		default:
			return nil, fmt.Errorf("schemareg: reference %q not found", ref)
		}
	}
	return node, nil
}
