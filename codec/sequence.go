package codec

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/erraggy/oaspipe/mediatype"
)

// recordSeparator prefixes every record of an application/json-seq stream (RFC 7464).
const recordSeparator = 0x1E

// Sequence is a lazily produced stream of records. Decoding and validation
// errors surface mid-stream as the error half of a pair, so consumers must
// iterate to completion to observe them.
type Sequence iter.Seq2[any, error]

// SequenceOf returns a Sequence yielding items in order.
func SequenceOf(items ...any) Sequence {
	return func(yield func(any, error) bool) {
		for _, it := range items {
			if !yield(it, nil) {
				return
			}
		}
	}
}

// AsSequence reports whether v is a record stream and returns it as a Sequence.
func AsSequence(v any) (Sequence, bool) {
	switch s := v.(type) {
	case Sequence:
		return s, true
	case iter.Seq2[any, error]:
		return Sequence(s), true
	case iter.Seq[any]:
		return func(yield func(any, error) bool) {
			for item := range s {
				if !yield(item, nil) {
					return
				}
			}
		}, true
	}
	return nil, false
}

// Collect drains the sequence into a slice, stopping at the first error.
func (s Sequence) Collect() ([]any, error) {
	var out []any
	for item, err := range s {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}

// EncodeJSONSeq streams a Sequence (or slice) as newline-delimited JSON
// records. For application/json-seq every record is also prefixed with the
// ASCII record separator.
func EncodeJSONSeq(ctx context.Context, v any, c *Context) (io.Reader, error) {
	seq, ok := AsSequence(v)
	if !ok {
		items, isSlice := v.([]any)
		if !isSlice {
			return nil, fmt.Errorf("codec: encode %s: unsupported value %T", c.ContentType, v)
		}
		seq = SequenceOf(items...)
	}
	withRS := mediatype.Essence(c.ContentType) == mediatype.JSONSeq

	pr, pw := io.Pipe()
	go func() {
		bw := bufio.NewWriter(pw)
		enc := json.NewEncoder(bw)
		for item, err := range seq {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if withRS {
				_ = bw.WriteByte(recordSeparator)
			}
			// Encode terminates each record with '\n'.
			if err := enc.Encode(item); err != nil {
				pw.CloseWithError(fmt.Errorf("codec: encode record: %w", err))
				return
			}
			if err := bw.Flush(); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(bw.Flush())
	}()
	return pr, nil
}

// DecodeJSONSeq returns a Sequence that decodes one JSON record per line,
// tolerating the RFC 7464 record separator. Blank lines are skipped.
func DecodeJSONSeq(_ context.Context, r io.Reader, c *Context) (any, error) {
	contentType := c.ContentType
	return Sequence(func(yield func(any, error) bool) {
		br := bufio.NewReader(r)
		for n := 0; ; n++ {
			line, err := br.ReadBytes('\n')
			if len(line) > 0 {
				rec := bytes.TrimSpace(bytes.TrimLeft(line, "\x1e"))
				if len(rec) > 0 {
					var v any
					if derr := json.Unmarshal(rec, &v); derr != nil {
						yield(nil, fmt.Errorf("codec: decode %s record %d: %w", contentType, n, derr))
						return
					}
					if !yield(v, nil) {
						return
					}
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, fmt.Errorf("codec: read %s: %w", contentType, err))
				}
				return
			}
		}
	}), nil
}
