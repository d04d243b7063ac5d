package schemareg

import (
	"strings"

	"github.com/erraggy/oaspipe/opdef"
)

// Kind discriminates the validator keys.
type Kind string

// Validator kinds.
const (
	KindParameter           Kind = "parameter"
	KindRequestBody         Kind = "requestBody"
	KindRequestBodyProperty Kind = "requestBodyProperty"
	KindResponseBody        Kind = "responseBody"
)

// Key identifies one compiled validator. Only the fields relevant to Kind
// are set; Key is comparable and used as a map key.
type Key struct {
	Kind        Kind
	Operation   string
	Name        string
	ContentType string
	Code        opdef.ResponseCode
}

// ParameterKey is the key of a parameter validator.
func ParameterKey(op, name string) Key {
	return Key{Kind: KindParameter, Operation: op, Name: name}
}

// RequestBodyKey is the key of a request body validator.
func RequestBodyKey(op, contentType string) Key {
	return Key{Kind: KindRequestBody, Operation: op, ContentType: contentType}
}

// RequestBodyPropertyKey is the key of a multipart property validator.
func RequestBodyPropertyKey(op, contentType, name string) Key {
	return Key{Kind: KindRequestBodyProperty, Operation: op, ContentType: contentType, Name: name}
}

// ResponseBodyKey is the key of a response body validator.
func ResponseBodyKey(op string, code opdef.ResponseCode, contentType string) Key {
	return Key{Kind: KindResponseBody, Operation: op, Code: code, ContentType: contentType}
}

// String renders the key as a slash separated path, e.g.
// "getPet/responseBody/200/application/json".
func (k Key) String() string {
	parts := []string{k.Operation, string(k.Kind)}
	switch k.Kind {
	case KindParameter:
		parts = append(parts, k.Name)
	case KindRequestBody:
		parts = append(parts, k.ContentType)
	case KindRequestBodyProperty:
		parts = append(parts, k.ContentType, k.Name)
	case KindResponseBody:
		parts = append(parts, string(k.Code), k.ContentType)
	}
	return strings.Join(parts, "/")
}
