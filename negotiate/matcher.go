// Package negotiate resolves response status codes to declared response
// clauses and decides whether a content type may be produced or received
// for a given Accept set.
//
// A Matcher is built once per operation and is safe for concurrent use.
package negotiate

import (
	"maps"
	"slices"
	"strconv"

	"github.com/erraggy/oaspipe/internal/httputil"
	"github.com/erraggy/oaspipe/mediatype"
	"github.com/erraggy/oaspipe/oaserrors"
	"github.com/erraggy/oaspipe/opdef"
	"github.com/erraggy/oaspipe/schemareg"
)

// Clause is the declared response for a status code.
type Clause struct {
	Code opdef.ResponseCode
	// Declared maps each declared media type to its validator key. A nil map
	// means nothing is declared for the status; an empty map means the
	// clause declares no body.
	Declared map[string]schemareg.Key
}

// Types returns the declared media types in lexical order, or nil when the
// clause is undeclared.
func (c Clause) Types() []string {
	if c.Declared == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.Declared))
}

// Matcher holds the response clauses of one operation.
type Matcher struct {
	clauses map[opdef.ResponseCode]map[string]schemareg.Key
}

// NewMatcher validates and indexes response clauses. Codes are normalized
// ("2xx" becomes "2XX"); codes that are not statuses, ranges or "default"
// and codes that collapse into the same bucket are rejected.
func NewMatcher(responses map[opdef.ResponseCode]map[string]schemareg.Key) (*Matcher, error) {
	m := &Matcher{clauses: make(map[opdef.ResponseCode]map[string]schemareg.Key, len(responses))}
	for _, code := range slices.Sorted(maps.Keys(responses)) {
		norm, kind := httputil.ClassifyResponseKey(string(code))
		if kind == httputil.CodeInvalid {
			return nil, &oaserrors.ConfigError{Option: "responses", Value: string(code), Message: "not a response code"}
		}
		key := opdef.ResponseCode(norm)
		if _, dup := m.clauses[key]; dup {
			return nil, &oaserrors.ConfigError{Option: "responses", Value: string(code), Message: "duplicate response bucket " + norm}
		}
		declared := responses[code]
		if declared == nil {
			declared = map[string]schemareg.Key{}
		}
		m.clauses[key] = declared
	}
	return m, nil
}

// ForDefinition builds the matcher of an extracted operation.
func ForDefinition(def *opdef.Definition) (*Matcher, error) {
	responses := make(map[opdef.ResponseCode]map[string]schemareg.Key, len(def.Responses))
	for code, types := range def.Responses {
		declared := make(map[string]schemareg.Key, len(types))
		for _, t := range types {
			declared[t] = schemareg.ResponseBodyKey(def.ID, code, t)
		}
		responses[code] = declared
	}
	return NewMatcher(responses)
}

// GetBest resolves status to its clause: the exact code, then the code
// range, then "default". When none is declared the result is the default
// code with a nil Declared map.
func (m *Matcher) GetBest(status int) Clause {
	for _, code := range []string{strconv.Itoa(status), httputil.RangeKey(status), httputil.DefaultResponseKey} {
		if declared, ok := m.clauses[opdef.ResponseCode(code)]; ok {
			return Clause{Code: opdef.ResponseCode(code), Declared: declared}
		}
	}
	return Clause{Code: opdef.DefaultCode}
}

// Acceptable reports whether every clause declaring at least one media type
// can produce something in accepted. Clauses without a body always pass.
func (m *Matcher) Acceptable(accepted mediatype.Set) bool {
	for _, declared := range m.clauses {
		if len(declared) == 0 {
			continue
		}
		ok := false
		for t := range declared {
			if accepted.MatchesAny(t) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Codes returns the declared buckets in lexical order.
func (m *Matcher) Codes() []opdef.ResponseCode {
	return slices.Sorted(maps.Keys(m.clauses))
}

// IsResponseTypeValid decides whether a response of type value ("" when the
// response has no body) satisfies the declaration and the Accept set:
//
//   - undeclared (nil): valid when there is no body or value is accepted;
//   - declared without body (empty): valid only when there is no body;
//   - otherwise: value must be declared and accepted.
func IsResponseTypeValid(value string, declared map[string]schemareg.Key, accepted mediatype.Set) bool {
	switch {
	case declared == nil:
		return value == "" || accepted.MatchesAny(value)
	case len(declared) == 0:
		return value == ""
	}
	if value == "" {
		return false
	}
	if _, ok := declared[value]; !ok {
		return false
	}
	return accepted.MatchesAny(value)
}
