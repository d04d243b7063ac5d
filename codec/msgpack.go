package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeMsgPack marshals v as MessagePack.
func EncodeMsgPack(_ context.Context, v any, _ *Context) (io.Reader, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode msgpack: %w", err)
	}
	return bytes.NewReader(data), nil
}

// DecodeMsgPack decodes one MessagePack value into generic Go values.
// Integers decode as int64/uint64 and floats as float64. An empty body
// decodes to nil.
func DecodeMsgPack(_ context.Context, r io.Reader, _ *Context) (any, error) {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	v, err := dec.DecodeInterface()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("codec: decode msgpack: %w", err)
	}
	return v, nil
}
