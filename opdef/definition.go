// Package opdef models the operations of an OpenAPI document in the shape the
// router and the SDK consume: path template, method, parameter locations,
// request body requirement and per-status response media types.
//
// Definitions are extracted once from a parsed document with [Extract] and
// are read-only afterwards.
//
//	result, err := opdef.ParseFile("petstore.yaml")
//	defs, err := opdef.Extract(result)
//	get := defs["getPet"]
//	fmt.Println(get.Method, get.Path) // GET /pets/{petId}
package opdef

import (
	"maps"
	"slices"

	"github.com/erraggy/oastools/parser"

	"github.com/erraggy/oaspipe/internal/httputil"
)

// Location is where a parameter travels.
type Location string

// Supported parameter locations. Cookie parameters are ignored.
const (
	InHeader Location = "header"
	InPath   Location = "path"
	InQuery  Location = "query"
)

// ResponseCode is a response bucket: a numeric status ("200"), a range
// ("2XX".."5XX") or "default".
type ResponseCode string

// DefaultCode is the catch-all response bucket.
const DefaultCode ResponseCode = httputil.DefaultResponseKey

// Kind classifies the code.
func (c ResponseCode) Kind() httputil.CodeKind {
	_, kind := httputil.ClassifyResponseKey(string(c))
	return kind
}

// Parameter is one path, query or header parameter.
type Parameter struct {
	Name     string
	Location Location
	Required bool
	Schema   *parser.Schema
}

// Body describes an operation's request body.
type Body struct {
	Required bool
	// Types lists the declared media types in lexical order.
	Types []string
	// Schemas holds the schema per declared type; nil values mean "any".
	Schemas map[string]*parser.Schema
}

// Accepts reports whether t is one of the declared body types.
func (b *Body) Accepts(t string) bool {
	return b != nil && slices.Contains(b.Types, t)
}

// Definition is the normalized view of one operation.
type Definition struct {
	ID     string
	Path   string
	Method string
	// Parameters is keyed by parameter name.
	Parameters map[string]Parameter
	// Body is nil when the operation declares no request body.
	Body *Body
	// Responses lists the declared media types per bucket, in lexical order.
	// An empty list means the bucket declares no body.
	Responses map[ResponseCode][]string
	// ResponseSchemas holds the schema per bucket and media type.
	ResponseSchemas map[ResponseCode]map[string]*parser.Schema

	Summary    string
	Deprecated bool
}

// ParametersIn returns the parameters at loc, ordered by name.
func (d *Definition) ParametersIn(loc Location) []Parameter {
	var out []Parameter
	for _, name := range slices.Sorted(maps.Keys(d.Parameters)) {
		if p := d.Parameters[name]; p.Location == loc {
			out = append(out, p)
		}
	}
	return out
}

// Codes returns the declared response buckets in a stable order: exact
// codes, then ranges, then default.
func (d *Definition) Codes() []ResponseCode {
	codes := slices.Collect(maps.Keys(d.Responses))
	slices.SortFunc(codes, func(a, b ResponseCode) int {
		if ka, kb := a.Kind(), b.Kind(); ka != kb {
			return int(ka) - int(kb)
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
	return codes
}

// Definitions maps operation ids to definitions.
type Definitions map[string]*Definition

// IDs returns the operation ids in lexical order.
func (d Definitions) IDs() []string {
	return slices.Sorted(maps.Keys(d))
}
