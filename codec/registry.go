// Package codec maps media types to encoders and decoders.
//
// A [Registry] is keyed by media type or wildcard pattern and resolves a
// concrete type with [Registry.GetBest]: the exact key first, then the
// subtype wildcard ("text/*"), then the "*/*" fallback every registry is
// seeded with. The router and the SDK seed identical default sets so that
// anything one side encodes the other side can decode.
//
// # Body shapes
//
// Decoders return one of four shapes, which callers dispatch on:
//
//   - io.Reader: an opaque byte stream (application/octet-stream)
//   - [Sequence]: a lazily decoded stream of records (application/json-seq)
//   - *[MultipartReader]: streaming multipart parts
//   - anything else: a fully materialized value
//
// # Custom codecs
//
// Any media type can be registered, including streaming formats:
//
//	decoders := codec.NewDecoders()
//	decoders.Add("application/vnd.acme+csv", func(ctx context.Context, r io.Reader, c *codec.Context) (any, error) {
//	    return csv.NewReader(r).ReadAll()
//	})
package codec

import (
	"errors"
	"maps"
	"slices"

	"github.com/erraggy/oaspipe/mediatype"
)

// ErrUnsupportedContentType is returned by the fallback codecs.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// Registry maps media types and wildcard patterns to values of type T.
// Registration happens at construction time; lookups afterwards are safe
// for concurrent use.
type Registry[T any] struct {
	entries map[string]T
}

// New returns a registry seeded with fallback under "*/*".
func New[T any](fallback T) *Registry[T] {
	return &Registry[T]{entries: map[string]T{mediatype.Any: fallback}}
}

// Add registers value under key, replacing any previous entry.
func (r *Registry[T]) Add(key string, value T) *Registry[T] {
	r.entries[key] = value
	return r
}

// AddAll registers every entry of m, replacing previous entries for the same keys.
func (r *Registry[T]) AddAll(m map[string]T) *Registry[T] {
	maps.Copy(r.entries, m)
	return r
}

// GetBest returns the entry for key: exact match, then "type/*", then "*/*".
// key must already be stripped of parameters.
func (r *Registry[T]) GetBest(key string) T {
	if v, ok := r.entries[key]; ok {
		return v
	}
	if v, ok := r.entries[mediatype.Wildcard(key)]; ok {
		return v
	}
	return r.entries[mediatype.Any]
}

// Lookup is GetBest that also reports whether a non-fallback entry matched.
func (r *Registry[T]) Lookup(key string) (T, bool) {
	if key != mediatype.Any {
		if v, ok := r.entries[key]; ok {
			return v, true
		}
		if w := mediatype.Wildcard(key); w != mediatype.Any {
			if v, ok := r.entries[w]; ok {
				return v, true
			}
		}
	}
	return r.entries[mediatype.Any], false
}

// Keys returns the registered keys in lexical order.
func (r *Registry[T]) Keys() []string {
	return slices.Sorted(maps.Keys(r.entries))
}

// Clone returns an independent copy of the registry.
func (r *Registry[T]) Clone() *Registry[T] {
	return &Registry[T]{entries: maps.Clone(r.entries)}
}
