package codec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
)

// EncodeText writes strings, byte slices, readers and fmt.Stringer values
// verbatim. Scalars are rendered with cast.ToStringE; anything else is an error.
func EncodeText(_ context.Context, v any, c *Context) (io.Reader, error) {
	switch t := v.(type) {
	case io.Reader:
		return t, nil
	case []byte:
		return bytes.NewReader(t), nil
	case string:
		return strings.NewReader(t), nil
	case fmt.Stringer:
		return strings.NewReader(t.String()), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode %s: %w", c.ContentType, err)
	}
	return strings.NewReader(s), nil
}

// DecodeText reads the whole body into a string.
func DecodeText(_ context.Context, r io.Reader, c *Context) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read %s: %w", c.ContentType, err)
	}
	return string(data), nil
}
