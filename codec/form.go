package codec

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// EncodeForm writes application/x-www-form-urlencoded bodies from
// url.Values, map[string]string, map[string][]string or map[string]any.
// Slice values become repeated keys.
func EncodeForm(_ context.Context, v any, _ *Context) (io.Reader, error) {
	values, err := toValues(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode form: %w", err)
	}
	return strings.NewReader(values.Encode()), nil
}

// DecodeForm parses a urlencoded body into map[string]any. Keys that occur
// once map to a string, repeated keys map to []any of strings.
func DecodeForm(_ context.Context, r io.Reader, _ *Context) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read form: %w", err)
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, fmt.Errorf("codec: decode form: %w", err)
	}
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		items := make([]any, len(vs))
		for i, s := range vs {
			items[i] = s
		}
		out[k] = items
	}
	return out, nil
}

func toValues(v any) (url.Values, error) {
	switch m := v.(type) {
	case url.Values:
		return m, nil
	case map[string][]string:
		return url.Values(m), nil
	case map[string]string:
		values := make(url.Values, len(m))
		for k, s := range m {
			values.Set(k, s)
		}
		return values, nil
	case map[string]any:
		values := make(url.Values, len(m))
		for k, item := range m {
			if item == nil {
				continue
			}
			rv := reflect.ValueOf(item)
			if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
				s, err := cast.ToStringE(item)
				if err != nil {
					return nil, fmt.Errorf("field %q: %w", k, err)
				}
				values.Set(k, s)
				continue
			}
			for i := range rv.Len() {
				s, err := cast.ToStringE(rv.Index(i).Interface())
				if err != nil {
					return nil, fmt.Errorf("field %q[%d]: %w", k, i, err)
				}
				values.Add(k, s)
			}
		}
		return values, nil
	}
	return nil, fmt.Errorf("unsupported form value %T", v)
}
