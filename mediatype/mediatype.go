// Package mediatype matches MIME types against patterns and parses Accept-style headers.
//
// Matching is literal and case-sensitive. Parameters (";charset=utf-8",
// ";q=0.5") are stripped before any comparison and q-values never influence
// preference: callers iterate declared types in their own order and take the
// first eligible one.
package mediatype

import (
	"sort"
	"strings"
)

// Any is the full wildcard. It is only ever used as a registry fallback key
// or as an accepted pattern, never as a declared type.
const Any = "*/*"

// Well-known media types with built-in codec support.
const (
	JSON        = "application/json"
	TextPlain   = "text/plain"
	Text        = "text/*"
	Form        = "application/x-www-form-urlencoded"
	Multipart   = "multipart/*"
	FormData    = "multipart/form-data"
	OctetStream = "application/octet-stream"
	MsgPack     = "application/msgpack"
	JSONSeq     = "application/json-seq"
	NDJSON      = "application/x-ndjson"
)

// Essence strips any parameters from a content type and trims whitespace.
//
//	Essence("application/json; charset=utf-8") == "application/json"
func Essence(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}

// Split returns the type and subtype of t. A value without a slash is
// returned whole as the type with an empty subtype.
func Split(t string) (string, string) {
	typ, sub, _ := strings.Cut(t, "/")
	return typ, sub
}

// Wildcard returns the subtype wildcard pattern covering t, e.g. "text/csv" -> "text/*".
func Wildcard(t string) string {
	typ, _ := Split(t)
	return typ + "/*"
}

// IsWildcard reports whether t has a wildcard subtype.
func IsWildcard(t string) bool {
	_, sub := Split(t)
	return sub == "*"
}

// Matches reports whether candidate matches pattern: they are equal, or
// pattern is "*/*", or both share a type and the subtypes are equal or the
// pattern subtype is "*".
func Matches(candidate, pattern string) bool {
	if candidate == pattern || pattern == Any {
		return true
	}
	ct, cs := Split(candidate)
	pt, ps := Split(pattern)
	return ct == pt && (cs == ps || ps == "*")
}

// IsMultipart reports whether t is a multipart type.
func IsMultipart(t string) bool {
	typ, _ := Split(Essence(t))
	return typ == "multipart"
}

// IsJSON reports whether t is application/json or a +json structured suffix type.
func IsJSON(t string) bool {
	t = Essence(t)
	return t == JSON || strings.HasSuffix(t, "+json")
}

// Set is an unordered collection of media types or patterns.
type Set map[string]struct{}

// NewSet returns a set holding types.
func NewSet(types ...string) Set {
	s := make(Set, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether t is a member of the set.
func (s Set) Has(t string) bool {
	_, ok := s[t]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MatchesAny reports whether candidate matches any pattern in s.
func (s Set) MatchesAny(candidate string) bool {
	if s.Has(candidate) {
		return true
	}
	for p := range s {
		if Matches(candidate, p) {
			return true
		}
	}
	return false
}

// Accepted parses a comma-separated Accept-style header into a set of types.
// Entries are trimmed and stripped of parameters, empties are dropped and
// duplicates collapse. An empty header yields an empty set; callers decide
// what absence means.
func Accepted(header string) Set {
	s := make(Set)
	for _, part := range strings.Split(header, ",") {
		if t := Essence(part); t != "" {
			s[t] = struct{}{}
		}
	}
	return s
}

// AcceptedOrAny is Accepted, except that an empty header yields {"*/*"}
// since an absent Accept header means the client takes anything.
func AcceptedOrAny(header string) Set {
	s := Accepted(header)
	if len(s) == 0 {
		s[Any] = struct{}{}
	}
	return s
}
