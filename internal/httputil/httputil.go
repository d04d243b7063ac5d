// Package httputil provides HTTP status code and method helpers shared by the
// router and the client SDK.
package httputil

import (
	"net/http"
	"strconv"
	"strings"
)

// HTTP Status Code Constants
const (
	StatusCodeLength     = 3   // Standard length of HTTP status codes (e.g., "200", "404")
	MinStatusCode        = 100 // Minimum valid HTTP status code
	MaxStatusCode        = 599 // Maximum valid HTTP status code
	WildcardChar         = 'X' // Wildcard character used in status code patterns (e.g., "2XX")
	MinWildcardFirstChar = '1' // Minimum first digit for wildcard patterns
	MaxWildcardFirstChar = '5' // Maximum first digit for wildcard patterns
)

// DefaultResponseKey is the OpenAPI key of the catch-all response.
const DefaultResponseKey = "default"

// CodeKind classifies a response key.
type CodeKind int

const (
	// CodeInvalid is returned for keys that are not response codes (extensions, garbage).
	CodeInvalid CodeKind = iota
	// CodeExact is a numeric status such as "200".
	CodeExact
	// CodeRange is a range tag such as "2XX".
	CodeRange
	// CodeDefault is the "default" key.
	CodeDefault
)

// String returns the kind name.
func (k CodeKind) String() string {
	switch k {
	case CodeExact:
		return "exact"
	case CodeRange:
		return "range"
	case CodeDefault:
		return "default"
	default:
		return "invalid"
	}
}

// ClassifyResponseKey normalizes an OpenAPI response key and reports its kind.
// Range tags are upper-cased ("2xx" becomes "2XX"). Extension keys ("x-...")
// and anything outside 100-599 / 1XX-5XX are CodeInvalid.
func ClassifyResponseKey(key string) (string, CodeKind) {
	if key == DefaultResponseKey {
		return key, CodeDefault
	}
	if len(key) != StatusCodeLength {
		return key, CodeInvalid
	}

	upper := strings.ToUpper(key)
	if upper[1] == WildcardChar && upper[2] == WildcardChar {
		if upper[0] >= MinWildcardFirstChar && upper[0] <= MaxWildcardFirstChar {
			return upper, CodeRange
		}
		return key, CodeInvalid
	}

	code, err := strconv.Atoi(key)
	if err != nil || code < MinStatusCode || code > MaxStatusCode {
		return key, CodeInvalid
	}
	return key, CodeExact
}

// RangeKey returns the range tag covering status, e.g. 404 -> "4XX".
func RangeKey(status int) string {
	return strconv.Itoa(status/100) + "XX"
}

// IsNoBodyStatus reports whether a response with this status must not carry a body.
func IsNoBodyStatus(status int) bool {
	return (status >= 100 && status < 200) || status == http.StatusNoContent || status == http.StatusNotModified
}

// Methods lists the HTTP methods an OpenAPI path item can declare, in
// declaration order of the OpenAPI path item object.
var Methods = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodHead,
	http.MethodPatch,
	http.MethodTrace,
}

// IsSupportedMethod reports whether method is one of Methods (upper case).
func IsSupportedMethod(method string) bool {
	for _, m := range Methods {
		if m == method {
			return true
		}
	}
	return false
}
