package opdef

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/oastools/parser"

	"github.com/erraggy/oaspipe/internal/httputil"
	"github.com/erraggy/oaspipe/internal/naming"
	"github.com/erraggy/oaspipe/mediatype"
	"github.com/erraggy/oaspipe/oaserrors"
)

// ParseFile parses the OpenAPI document at path with references resolved.
func ParseFile(path string) (*parser.ParseResult, error) {
	return parse(parser.WithFilePath(path))
}

// ParseBytes parses an OpenAPI document from data with references resolved.
func ParseBytes(data []byte) (*parser.ParseResult, error) {
	return parse(parser.WithBytes(data))
}

func parse(source parser.Option) (*parser.ParseResult, error) {
	result, err := parser.ParseWithOptions(source, parser.WithResolveRefs(true))
	if err != nil {
		return nil, fmt.Errorf("opdef: parse: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, &oaserrors.ConfigError{Option: "document", Message: "document has errors", Cause: result.Errors[0]}
	}
	return result, nil
}

// Extract builds a definition for every operation of an OAS 3.x document.
// Operations without an operationId get one synthesized from method and
// path. Duplicate ids, duplicate parameter names and response keys that
// collapse into the same bucket (e.g. "2xx" and "2XX") are rejected.
func Extract(result *parser.ParseResult) (Definitions, error) {
	if result == nil {
		return nil, &oaserrors.ConfigError{Option: "document", Message: "nil parse result"}
	}
	doc, ok := result.OAS3Document()
	if !ok {
		return nil, &oaserrors.ConfigError{
			Option:  "document",
			Value:   result.Version,
			Message: "only OpenAPI 3.x documents are supported",
		}
	}

	defs := make(Definitions)
	for _, path := range slices.Sorted(maps.Keys(doc.Paths)) {
		item := doc.Paths[path]
		if item == nil {
			continue
		}
		for _, method := range httputil.Methods {
			op := operationFor(item, method)
			if op == nil {
				continue
			}
			def, err := extractOperation(path, method, item, op)
			if err != nil {
				return nil, err
			}
			if prev, dup := defs[def.ID]; dup {
				return nil, &oaserrors.ConfigError{
					Option:  "operationId",
					Value:   def.ID,
					Message: fmt.Sprintf("declared by both %s %s and %s %s", prev.Method, prev.Path, def.Method, def.Path),
				}
			}
			defs[def.ID] = def
		}
	}
	return defs, nil
}

func operationFor(item *parser.PathItem, method string) *parser.Operation {
	switch method {
	case "GET":
		return item.Get
	case "PUT":
		return item.Put
	case "POST":
		return item.Post
	case "DELETE":
		return item.Delete
	case "OPTIONS":
		return item.Options
	case "HEAD":
		return item.Head
	case "PATCH":
		return item.Patch
	case "TRACE":
		return item.Trace
	}
	return nil
}

func extractOperation(path, method string, item *parser.PathItem, op *parser.Operation) (*Definition, error) {
	id := op.OperationID
	if id == "" {
		id = naming.OperationID(method, path)
	}
	def := &Definition{
		ID:              id,
		Path:            path,
		Method:          method,
		Parameters:      make(map[string]Parameter),
		Responses:       make(map[ResponseCode][]string),
		ResponseSchemas: make(map[ResponseCode]map[string]*parser.Schema),
		Summary:         op.Summary,
		Deprecated:      op.Deprecated,
	}

	// Path item parameters first; operation parameters override by name and location.
	merged := make(map[string]*parser.Parameter)
	for _, list := range [][]*parser.Parameter{item.Parameters, op.Parameters} {
		for _, p := range list {
			if p == nil || p.Name == "" {
				continue
			}
			merged[p.In+"\x00"+p.Name] = p
		}
	}
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		p := merged[k]
		loc := Location(p.In)
		switch loc {
		case InHeader, InPath, InQuery:
		default:
			continue
		}
		if prev, dup := def.Parameters[p.Name]; dup {
			return nil, &oaserrors.ConfigError{
				Option:  id + ".parameters",
				Value:   p.Name,
				Message: fmt.Sprintf("parameter declared in both %s and %s", prev.Location, loc),
			}
		}
		def.Parameters[p.Name] = Parameter{
			Name:     p.Name,
			Location: loc,
			Required: p.Required || loc == InPath,
			Schema:   parameterSchema(p),
		}
	}

	if rb := op.RequestBody; rb != nil && len(rb.Content) > 0 {
		def.Body = &Body{
			Required: rb.Required,
			Types:    sortedTypes(rb.Content),
			Schemas:  contentSchemas(rb.Content),
		}
	}

	if op.Responses != nil {
		if op.Responses.Default != nil {
			addResponse(def, DefaultCode, op.Responses.Default)
		}
		for _, key := range slices.Sorted(maps.Keys(op.Responses.Codes)) {
			norm, kind := httputil.ClassifyResponseKey(key)
			switch kind {
			case httputil.CodeInvalid:
				continue
			case httputil.CodeDefault:
				if op.Responses.Default != nil {
					return nil, duplicateResponse(id, key)
				}
			}
			code := ResponseCode(norm)
			if _, dup := def.Responses[code]; dup {
				return nil, duplicateResponse(id, key)
			}
			addResponse(def, code, op.Responses.Codes[key])
		}
	}
	return def, nil
}

func duplicateResponse(id, key string) error {
	return &oaserrors.ConfigError{
		Option:  id + ".responses",
		Value:   key,
		Message: "response key collapses into an already declared bucket",
	}
}

func addResponse(def *Definition, code ResponseCode, resp *parser.Response) {
	if resp == nil {
		def.Responses[code] = []string{}
		def.ResponseSchemas[code] = map[string]*parser.Schema{}
		return
	}
	def.Responses[code] = sortedTypes(resp.Content)
	def.ResponseSchemas[code] = contentSchemas(resp.Content)
}

// parameterSchema returns the parameter schema, falling back to the schema
// of the first content entry for parameters declared with content.
func parameterSchema(p *parser.Parameter) *parser.Schema {
	if p.Schema != nil {
		return p.Schema
	}
	for _, t := range sortedTypes(p.Content) {
		if mt := p.Content[t]; mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	return nil
}

// sortedTypes returns the declared media types, stripped of parameters.
func sortedTypes(content map[string]*parser.MediaType) []string {
	types := make([]string, 0, len(content))
	for t := range content {
		types = append(types, mediatype.Essence(t))
	}
	slices.Sort(types)
	return slices.Compact(types)
}

func contentSchemas(content map[string]*parser.MediaType) map[string]*parser.Schema {
	out := make(map[string]*parser.Schema, len(content))
	for t, mt := range content {
		var s *parser.Schema
		if mt != nil {
			s = mt.Schema
		}
		out[mediatype.Essence(t)] = s
	}
	return out
}

// PathParamNames returns the placeholder names of a path template in order.
func PathParamNames(path string) []string {
	var names []string
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			names = append(names, seg[1:len(seg)-1])
		}
	}
	return names
}
