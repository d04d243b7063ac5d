package codec

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Option keys set by the engines in Context.Options.
const (
	// OptionRequest holds the inbound *http.Request on the server side.
	OptionRequest = "request"
	// OptionResponse holds the received *http.Response on the client side.
	OptionResponse = "response"
)

// Context carries what a codec needs to make decisions without reaching
// into transport internals.
type Context struct {
	// OperationID is the operation being served or called.
	OperationID string
	// ContentType is the media type the codec was selected for. Decoders see
	// the value as received, parameters included. Encoders may rewrite it,
	// e.g. to add a multipart boundary; the engines send the rewritten value
	// as the Content-Type header.
	ContentType string
	// Header is the request header (decoding on the server, encoding on the
	// client) or the response header.
	Header http.Header
	// Options holds transport-specific values keyed by Option* constants or
	// by custom codec conventions.
	Options map[string]any
}

// Option returns the named option, or nil.
func (c *Context) Option(key string) any {
	if c == nil || c.Options == nil {
		return nil
	}
	return c.Options[key]
}

// EncodeFunc turns a logical value into a wire body.
type EncodeFunc func(ctx context.Context, v any, c *Context) (io.Reader, error)

// DecodeFunc turns a wire body into a logical value. The returned value may
// keep reading from r after the call returns (streams, sequences, multipart).
type DecodeFunc func(ctx context.Context, r io.Reader, c *Context) (any, error)

func unsupportedEncoder(_ context.Context, _ any, c *Context) (io.Reader, error) {
	return nil, fmt.Errorf("codec: encode %s: %w", c.ContentType, ErrUnsupportedContentType)
}

func unsupportedDecoder(_ context.Context, _ io.Reader, c *Context) (any, error) {
	return nil, fmt.Errorf("codec: decode %s: %w", c.ContentType, ErrUnsupportedContentType)
}
