package codec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

// EncodeBinary passes readers through and wraps byte slices and strings.
func EncodeBinary(_ context.Context, v any, c *Context) (io.Reader, error) {
	switch b := v.(type) {
	case io.Reader:
		return b, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	}
	return nil, fmt.Errorf("codec: encode %s: unsupported value %T", c.ContentType, v)
}

// DecodeBinary returns the body itself as an opaque stream.
func DecodeBinary(_ context.Context, r io.Reader, _ *Context) (any, error) {
	return r, nil
}

// IsBinary reports whether v is an opaque byte payload.
func IsBinary(v any) bool {
	switch v.(type) {
	case io.Reader, []byte:
		return true
	}
	return false
}
