// Package schemareg compiles the schemas of an OpenAPI document into
// validators addressed by [Key].
//
// Schemas are compiled with github.com/santhosh-tekuri/jsonschema/v5 against
// a single document resource holding the components, so references into
// "#/components/schemas" resolve, including circular ones. OpenAPI 3.0
// dialect (nullable, boolean exclusive bounds) is rewritten to JSON Schema
// 2020-12 before compiling.
//
// A registry is populated once and read-only afterwards; Register methods
// must not race with Validate or Coerce.
package schemareg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/oastools/parser"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/internal/issues"
	"github.com/erraggy/oaspipe/logging"
	"github.com/erraggy/oaspipe/mediatype"
	"github.com/erraggy/oaspipe/oaserrors"
	"github.com/erraggy/oaspipe/opdef"
)

const (
	documentURL = "oaspipe:///document.json"
	schemaURL   = "oaspipe:///schemas/%d.json"
)

type entry struct {
	schema *jsonschema.Schema
	// source is the normalized schema used for coercion.
	source any
	binary bool
}

// Registry holds compiled validators.
type Registry struct {
	compiler *jsonschema.Compiler
	logger   logging.Logger
	doc      any
	entries  map[Key]*entry
	props    map[Key][]string
	seq      int
}

// Option configures a Registry.
type Option func(*config)

type config struct {
	components   *parser.Components
	assertFormat bool
	logger       logging.Logger
}

// WithComponents makes the document components available to references.
func WithComponents(c *parser.Components) Option {
	return func(cfg *config) { cfg.components = c }
}

// WithFormatAssertion toggles validation of the "format" keyword (on by default).
func WithFormatAssertion(enabled bool) Option {
	return func(cfg *config) { cfg.assertFormat = enabled }
}

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}

// New creates an empty registry.
func New(opts ...Option) (*Registry, error) {
	cfg := &config{assertFormat: true}
	for _, opt := range opts {
		opt(cfg)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = cfg.assertFormat
	c.LoadURL = func(s string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("schemareg: external reference %s is not supported", s)
	}

	r := &Registry{
		compiler: c,
		logger:   logging.OrNop(cfg.logger),
		entries:  make(map[Key]*entry),
		props:    make(map[Key][]string),
	}

	var comps any = map[string]any{}
	if cfg.components != nil && len(cfg.components.Schemas) > 0 {
		v, err := toJSONValue(map[string]any{"schemas": cfg.components.Schemas})
		if err != nil {
			return nil, &oaserrors.ConfigError{Option: "components", Message: "cannot encode schemas", Cause: err}
		}
		comps = v
	}
	r.doc = normalize(map[string]any{"components": comps}, "")
	data, err := json.Marshal(r.doc)
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "components", Message: "cannot encode schemas", Cause: err}
	}
	if err := c.AddResource(documentURL, bytes.NewReader(data)); err != nil {
		return nil, &oaserrors.ConfigError{Option: "components", Message: "invalid schemas", Cause: err}
	}
	return r, nil
}

// ForDefinitions creates a registry holding every parameter, request body
// and response body validator of defs.
func ForDefinitions(defs opdef.Definitions, opts ...Option) (*Registry, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}
	for _, id := range defs.IDs() {
		if err := r.RegisterDefinition(defs[id]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RegisterDefinition registers all validators of one operation.
func (r *Registry) RegisterDefinition(def *opdef.Definition) error {
	for _, name := range slices.Sorted(maps.Keys(def.Parameters)) {
		if err := r.RegisterParameter(def.ID, name, def.Parameters[name].Schema); err != nil {
			return err
		}
	}
	if def.Body != nil {
		for _, ct := range def.Body.Types {
			if err := r.RegisterRequestBody(def.ID, ct, def.Body.Schemas[ct]); err != nil {
				return err
			}
		}
	}
	for _, code := range def.Codes() {
		for _, ct := range def.Responses[code] {
			if err := r.RegisterResponseBody(def.ID, code, ct, def.ResponseSchemas[code][ct]); err != nil {
				return err
			}
		}
	}
	return nil
}

// RegisterParameter compiles the validator for a parameter. The schema is
// wrapped in an object requiring the parameter name, so issues report the
// parameter as their instance path.
func (r *Registry) RegisterParameter(op, name string, schema *parser.Schema) error {
	src, err := r.source(schema)
	if err != nil {
		return r.configError(ParameterKey(op, name), err)
	}
	wrapper := map[string]any{
		"type":       "object",
		"properties": map[string]any{name: src},
		"required":   []any{name},
	}
	return r.add(ParameterKey(op, name), wrapper, false)
}

// RegisterRequestBody compiles the validator for a request body media type.
// Multipart types additionally get one validator per declared property.
func (r *Registry) RegisterRequestBody(op, contentType string, schema *parser.Schema) error {
	key := RequestBodyKey(op, contentType)
	src, err := r.source(schema)
	if err != nil {
		return r.configError(key, err)
	}
	if err := r.add(key, src, binarySchema(schema)); err != nil {
		return err
	}
	if !mediatype.IsMultipart(contentType) || schema == nil {
		return nil
	}

	props := schema.Properties
	var names []string
	for _, name := range slices.Sorted(maps.Keys(props)) {
		pkey := RequestBodyPropertyKey(op, contentType, name)
		psrc, err := r.source(props[name])
		if err != nil {
			return r.configError(pkey, err)
		}
		if err := r.add(pkey, psrc, binarySchema(props[name])); err != nil {
			return err
		}
		names = append(names, name)
	}
	r.props[key] = names
	return nil
}

// RegisterResponseBody compiles the validator for a response media type.
func (r *Registry) RegisterResponseBody(op string, code opdef.ResponseCode, contentType string, schema *parser.Schema) error {
	key := ResponseBodyKey(op, code, contentType)
	src, err := r.source(schema)
	if err != nil {
		return r.configError(key, err)
	}
	return r.add(key, src, binarySchema(schema))
}

// Has reports whether a validator is registered under key.
func (r *Registry) Has(key Key) bool {
	_, ok := r.entries[key]
	return ok
}

// MultipartProperties returns the declared property names of a multipart
// request body, in lexical order.
func (r *Registry) MultipartProperties(op, contentType string) []string {
	return r.props[RequestBodyKey(op, contentType)]
}

// Validate checks value against the validator registered under key. It
// returns an *oaserrors.IncompatibleValueError listing every violation, or
// nil. Binary payloads and binary schemas are not validated structurally.
//
// Validate panics if no validator is registered under key.
func (r *Registry) Validate(key Key, value any) error {
	e := r.mustGet(key)
	if e.binary || codec.IsBinary(value) {
		return nil
	}
	if key.Kind == KindParameter {
		wrapped := map[string]any{}
		if value != nil {
			wrapped[key.Name] = value
		}
		return r.validate(key, e, wrapped, value)
	}
	return r.validate(key, e, value, value)
}

func (r *Registry) validate(key Key, e *entry, instance, reported any) error {
	v, err := toJSONInstance(instance)
	if err != nil {
		return &oaserrors.IncompatibleValueError{
			Key:    key.String(),
			Value:  reported,
			Issues: []issues.Issue{{Message: err.Error()}},
		}
	}
	if err := e.schema.Validate(v); err != nil {
		return &oaserrors.IncompatibleValueError{
			Key:    key.String(),
			Value:  reported,
			Issues: flatten(err),
		}
	}
	return nil
}

func (r *Registry) mustGet(key Key) *entry {
	e, ok := r.entries[key]
	if !ok {
		panic(fmt.Sprintf("schemareg: no validator registered for %s", key))
	}
	return e
}

func (r *Registry) source(schema *parser.Schema) (any, error) {
	if schema == nil {
		return map[string]any{}, nil
	}
	v, err := toJSONValue(schema)
	if err != nil {
		return nil, err
	}
	return normalize(v, documentURL), nil
}

func (r *Registry) add(key Key, src any, binary bool) error {
	data, err := json.Marshal(src)
	if err != nil {
		return r.configError(key, err)
	}
	r.seq++
	url := fmt.Sprintf(schemaURL, r.seq)
	if err := r.compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return r.configError(key, err)
	}
	compiled, err := r.compiler.Compile(url)
	if err != nil {
		return r.configError(key, err)
	}
	r.entries[key] = &entry{schema: compiled, source: src, binary: binary}
	r.logger.Debug("registered validator", "key", key.String())
	return nil
}

func (r *Registry) configError(key Key, err error) error {
	return &oaserrors.ConfigError{
		Option:  key.String(),
		Message: "cannot compile schema",
		Cause:   err,
	}
}

func binarySchema(s *parser.Schema) bool {
	if s == nil || s.Format != "binary" {
		return false
	}
	switch t := s.Type.(type) {
	case nil:
		return true
	case string:
		return t == "string"
	case []string:
		return slices.Contains(t, "string")
	case []any:
		return slices.Contains(t, any("string"))
	}
	return false
}

// toJSONInstance converts v into the value model the validator accepts,
// keeping numbers exact.
func toJSONInstance(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// flatten collects the leaf causes of a validation error.
func flatten(err error) []issues.Issue {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []issues.Issue{{Message: err.Error()}}
	}
	var out []issues.Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, issues.Issue{
				InstancePath: e.InstanceLocation,
				SchemaPath:   e.KeywordLocation,
				Keyword:      lastSegment(e.KeywordLocation),
				Message:      e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return out
}

func lastSegment(ptr string) string {
	if i := strings.LastIndexByte(ptr, '/'); i >= 0 {
		return ptr[i+1:]
	}
	return ptr
}
