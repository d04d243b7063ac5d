package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// EncodeJSON marshals v as a JSON document. json.RawMessage and []byte
// are written as-is.
func EncodeJSON(_ context.Context, v any, _ *Context) (io.Reader, error) {
	switch b := v.(type) {
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode json: %w", err)
	}
	return bytes.NewReader(data), nil
}

// DecodeJSON unmarshals a JSON document into generic Go values
// (map[string]any, []any, float64, string, bool, nil). An empty body
// decodes to nil.
func DecodeJSON(_ context.Context, r io.Reader, _ *Context) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read json: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("codec: decode json: %w", err)
	}
	return v, nil
}
