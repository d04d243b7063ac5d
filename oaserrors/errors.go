package oaserrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/erraggy/oaspipe/internal/issues"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrInvalidRequest indicates the request does not satisfy the operation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotAcceptable indicates no declared response type is acceptable to the caller.
	ErrNotAcceptable = errors.New("not acceptable")

	// ErrContract indicates a handler broke its declared response contract.
	ErrContract = errors.New("response contract violation")

	// ErrUnexpectedResponse indicates the client received an undeclared or unaccepted response.
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrIncompatibleValue indicates a value failed schema validation.
	ErrIncompatibleValue = errors.New("incompatible value")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// Kind discriminates the invalid request family.
type Kind string

// Invalid request kinds.
const (
	KindNotAcceptable          Kind = "not acceptable"
	KindMissingParameter       Kind = "missing parameter"
	KindInvalidParameter       Kind = "invalid parameter"
	KindUnexpectedBody         Kind = "unexpected body"
	KindMissingBody            Kind = "missing body"
	KindUnsupportedContentType Kind = "unsupported content type"
	KindUndecodableBody        Kind = "undecodable body"
	KindInvalidBody            Kind = "invalid body"
	KindInvalidBodyProperty    Kind = "invalid body property"
)

// Status returns the HTTP status associated with an invalid request kind.
func (k Kind) Status() int {
	switch k {
	case KindNotAcceptable:
		return http.StatusNotAcceptable
	case KindUnsupportedContentType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

// InvalidRequestError represents a request that violates its operation's contract.
// Status is the HTTP status the request should be answered with.
type InvalidRequestError struct {
	// Kind is the failure category
	Kind Kind
	// Status is the HTTP status derived from Kind
	Status int
	// OperationID is the operation the request was routed to
	OperationID string
	// Parameter names the offending parameter or multipart property, if any
	Parameter string
	// ContentType is the offending request content type, if any
	ContentType string
	// Cause is the underlying error, if any
	Cause error
}

// NewInvalidRequest builds an InvalidRequestError with the status derived from kind.
func NewInvalidRequest(kind Kind, operationID string, cause error) *InvalidRequestError {
	return &InvalidRequestError{
		Kind:        kind,
		Status:      kind.Status(),
		OperationID: operationID,
		Cause:       cause,
	}
}

// Error returns a human-readable error message.
func (e *InvalidRequestError) Error() string {
	msg := string(e.Kind)
	if msg == "" {
		msg = "invalid request"
	}
	if e.Parameter != "" {
		msg += fmt.Sprintf(" %q", e.Parameter)
	}
	if e.ContentType != "" {
		msg += " (" + e.ContentType + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *InvalidRequestError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *InvalidRequestError) Is(target error) bool {
	if target == ErrInvalidRequest {
		return true
	}
	return target == ErrNotAcceptable && e.Kind == KindNotAcceptable
}

// ContractKind discriminates response contract violations.
type ContractKind string

// Contract violation kinds.
const (
	ContractUnacceptableType ContractKind = "unacceptable response type"
	ContractUnexpectedBody   ContractKind = "unexpected response body"
	ContractInvalidResponse  ContractKind = "invalid response data"
)

// ContractError represents a handler reply outside the operation's declared contract.
// It is always an internal error: the request was fine, the handler was not.
type ContractError struct {
	// Kind is the violation category
	Kind ContractKind
	// OperationID is the operation whose handler replied
	OperationID string
	// Status is the status the handler chose
	Status int
	// ContentType is the content type the handler chose (empty for none)
	ContentType string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ContractError) Error() string {
	msg := string(e.Kind)
	if msg == "" {
		msg = "response contract violation"
	}
	if e.OperationID != "" {
		msg += " in " + e.OperationID
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d", e.Status)
		if e.ContentType != "" {
			msg += ", " + e.ContentType
		}
		msg += ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ContractError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ContractError) Is(target error) bool {
	return target == ErrContract
}

// UnexpectedResponseError is returned by the SDK when a response's content type
// cannot be reconciled with what the operation declares and the caller accepts.
type UnexpectedResponseError struct {
	// Method is the request method
	Method string
	// Path is the request path template
	Path string
	// Status is the received status code
	Status int
	// Received is the received content type (empty for none)
	Received string
	// Accepted lists the types the caller accepted
	Accepted []string
	// Declared lists the types declared for the matched status (nil when undeclared)
	Declared []string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *UnexpectedResponseError) Error() string {
	received := e.Received
	if received == "" {
		received = "no content"
	}
	declared := "undeclared"
	if e.Declared != nil {
		declared = "[" + strings.Join(e.Declared, ", ") + "]"
	}
	msg := fmt.Sprintf("unexpected response to %s %s: status %d, received %s, accepted [%s], declared %s",
		e.Method, e.Path, e.Status, received, strings.Join(e.Accepted, ", "), declared)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *UnexpectedResponseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *UnexpectedResponseError) Is(target error) bool {
	return target == ErrUnexpectedResponse
}

// IncompatibleValueError represents a value that failed schema validation.
type IncompatibleValueError struct {
	// Key identifies the validator that rejected the value
	Key string
	// Value is the offending value
	Value any
	// Issues lists every schema violation
	Issues []issues.Issue
}

// Error returns a human-readable error message.
func (e *IncompatibleValueError) Error() string {
	msg := "incompatible value"
	if e.Key != "" {
		msg += " for " + e.Key
	}
	switch len(e.Issues) {
	case 0:
	case 1:
		msg += ": " + e.Issues[0].String()
	default:
		msg += fmt.Sprintf(": %d issues:\n%s", len(e.Issues), issues.Join(e.Issues))
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *IncompatibleValueError) Is(target error) bool {
	return target == ErrIncompatibleValue
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, unsupported documents, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
