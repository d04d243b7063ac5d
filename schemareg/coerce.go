package schemareg

import (
	"strings"

	"github.com/spf13/cast"
)

// maxRefDepth bounds reference chasing during coercion.
const maxRefDepth = 32

// Coerce converts raw textual input (path, query and header values, or the
// fields of a form body) to the types the schema under key declares, then
// validates the result. Values that cannot be converted are kept as they are
// and reported by validation.
//
// Coerce panics if no validator is registered under key.
func (r *Registry) Coerce(key Key, raw any) (any, error) {
	e := r.mustGet(key)
	src := e.source
	if key.Kind == KindParameter {
		src = propertySchema(r.resolve(src), key.Name)
	}
	value := r.coerce(src, raw, 0)
	return value, r.Validate(key, value)
}

// Type returns the JSON type the schema under key declares, or "" when it
// declares none. For parameters it is the type of the parameter itself.
func (r *Registry) Type(key Key) string {
	src := r.mustGet(key).source
	if key.Kind == KindParameter {
		src = propertySchema(r.resolve(src), key.Name)
	}
	m := r.resolve(src)
	if m == nil {
		return ""
	}
	return schemaType(r, m, 0)
}

func (r *Registry) coerce(schema any, raw any, depth int) any {
	if depth > maxRefDepth || raw == nil {
		return raw
	}
	m := r.resolve(schema)
	if m == nil {
		return raw
	}

	switch schemaType(r, m, depth) {
	case "integer":
		if s, ok := scalar(raw); ok {
			if n, err := cast.ToInt64E(strings.TrimSpace(s)); err == nil {
				return n
			}
		}
	case "number":
		if s, ok := scalar(raw); ok {
			if f, err := cast.ToFloat64E(strings.TrimSpace(s)); err == nil {
				return f
			}
		}
	case "boolean":
		if s, ok := scalar(raw); ok {
			if b, err := cast.ToBoolE(strings.TrimSpace(s)); err == nil {
				return b
			}
		}
	case "string":
		if s, ok := scalar(raw); ok {
			return s
		}
	case "array":
		items, ok := elements(raw)
		if !ok {
			return raw
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = r.coerce(m["items"], item, depth+1)
		}
		return out
	case "object":
		obj, ok := raw.(map[string]any)
		if !ok {
			return raw
		}
		out := make(map[string]any, len(obj))
		for k, v := range obj {
			if ps := propertySchema(m, k); ps != nil {
				out[k] = r.coerce(ps, v, depth+1)
			} else {
				out[k] = v
			}
		}
		return out
	}
	return raw
}

// resolve follows $ref chains and returns the schema object, or nil.
func (r *Registry) resolve(schema any) map[string]any {
	for range maxRefDepth {
		m, ok := schema.(map[string]any)
		if !ok {
			return nil
		}
		ref, ok := m["$ref"].(string)
		if !ok {
			return m
		}
		target, err := resolvePointer(r.doc, ref)
		if err != nil {
			return m
		}
		schema = target
	}
	return nil
}

// schemaType returns the first non-null declared type, looking through
// allOf members when the schema itself declares none.
func schemaType(r *Registry, m map[string]any, depth int) string {
	switch t := m["type"].(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s != "null" {
				return s
			}
		}
	}
	if depth > maxRefDepth {
		return ""
	}
	if all, ok := m["allOf"].([]any); ok {
		for _, sub := range all {
			if sm := r.resolve(sub); sm != nil {
				if t := schemaType(r, sm, depth+1); t != "" {
					return t
				}
			}
		}
	}
	if _, ok := m["properties"]; ok {
		return "object"
	}
	return ""
}

func propertySchema(m map[string]any, name string) any {
	if m == nil {
		return nil
	}
	if props, ok := m["properties"].(map[string]any); ok {
		if ps, ok := props[name]; ok {
			return ps
		}
	}
	if all, ok := m["allOf"].([]any); ok {
		for _, sub := range all {
			if sm, ok := sub.(map[string]any); ok {
				if ps := propertySchema(sm, name); ps != nil {
					return ps
				}
			}
		}
	}
	return nil
}

// scalar extracts a single textual value; a one element list counts.
func scalar(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case []string:
		if len(v) == 1 {
			return v[0], true
		}
	case []any:
		if len(v) == 1 {
			s, ok := v[0].(string)
			return s, ok
		}
	}
	return "", false
}

// elements splits raw input into array items. A single string is split on
// commas; repeated values are taken as they are.
func elements(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return []any{}, true
		}
		parts := strings.Split(v, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, true
	case []string:
		if len(v) == 1 {
			return elements(v[0])
		}
		out := make([]any, len(v))
		for i, p := range v {
			out[i] = p
		}
		return out, true
	case []any:
		return v, true
	}
	return nil, false
}
