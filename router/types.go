package router

import (
	"context"
	"io"
	"net/http"

	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/mediatype"
)

// HandlerFunc serves one operation. The request has already passed the
// accept gate and parameter and body validation. The reply is checked
// against the operation's declared responses before anything is written.
type HandlerFunc func(ctx context.Context, req *Request) (Reply, error)

// BodyKind tells which shape Request.Body has.
type BodyKind int

const (
	// BodyNone means the request carried no body.
	BodyNone BodyKind = iota
	// BodyValue is a fully decoded and validated value.
	BodyValue
	// BodyStream is an opaque io.Reader.
	BodyStream
	// BodySequence is a codec.Sequence validated element by element.
	BodySequence
	// BodyMultipart is a *Multipart validated part by part.
	BodyMultipart
)

// String returns the kind name.
func (k BodyKind) String() string {
	switch k {
	case BodyValue:
		return "value"
	case BodyStream:
		return "stream"
	case BodySequence:
		return "sequence"
	case BodyMultipart:
		return "multipart"
	default:
		return "none"
	}
}

// Request contains validated request data passed to operation handlers.
type Request struct {
	// HTTPRequest is the original HTTP request.
	HTTPRequest *http.Request

	// OperationID is the operation ID for this request.
	OperationID string

	// MatchedPath is the OpenAPI path template that matched (e.g., "/pets/{petId}").
	MatchedPath string

	// PathParams, QueryParams and HeaderParams hold the coerced parameter
	// values. Absent optional parameters have no entry.
	PathParams   map[string]any
	QueryParams  map[string]any
	HeaderParams map[string]any

	// ContentType is the declared media type the body was decoded as, or ""
	// when there is no body.
	ContentType string

	// Kind is the shape of Body.
	Kind BodyKind

	// Body is the decoded request body. See Kind.
	Body any

	// Accepted is the parsed Accept header; an absent header is {"*/*"}.
	Accepted mediatype.Set
}

// Param returns a parameter value by name, looking at path, query and
// header parameters in that order.
func (r *Request) Param(name string) (any, bool) {
	for _, m := range []map[string]any{r.PathParams, r.QueryParams, r.HeaderParams} {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Accepts reports whether the caller accepts contentType.
func (r *Request) Accepts(contentType string) bool {
	return r.Accepted.MatchesAny(contentType)
}

// Preferred returns the first candidate the caller accepts, or "".
// Candidates are tried in the order given; q-values play no part.
//
//	switch req.Preferred("application/json", "text/csv") {
//	case "application/json":
//		return router.JSON(http.StatusOK, rows), nil
//	case "text/csv":
//		return router.Content(http.StatusOK, "text/csv", toCSV(rows)), nil
//	default:
//		panic("unreachable: accept gate admitted the request")
//	}
func (r *Request) Preferred(candidates ...string) string {
	for _, c := range candidates {
		if r.Accepts(c) {
			return c
		}
	}
	return ""
}

// Stream returns the body as an opaque stream.
func (r *Request) Stream() (io.Reader, bool) {
	s, ok := r.Body.(io.Reader)
	return s, ok && r.Kind == BodyStream
}

// Sequence returns the body as a record stream. Validation errors surface
// as the error half of the pairs, so the sequence must be iterated to the end.
func (r *Request) Sequence() (codec.Sequence, bool) {
	s, ok := r.Body.(codec.Sequence)
	return s, ok
}

// Multipart returns the body as a validated multipart stream.
func (r *Request) Multipart() (*Multipart, bool) {
	m, ok := r.Body.(*Multipart)
	return m, ok
}

// Reply is a handler's answer: a status with an optional typed payload.
type Reply struct {
	// Status defaults to 200.
	Status int
	// Type is the response media type. It defaults to application/json when
	// Data is set; with neither set only the status is written.
	Type string
	// Data is the payload. Sequences (codec.Sequence, iter.Seq2[any, error],
	// iter.Seq[any]) are validated element by element while they encode.
	Data any
	// Header is copied to the response before the status is written.
	Header http.Header

	bare bool
}

// Status is a reply with no body at all.
//
//	return router.Status(http.StatusNotFound), nil
func Status(code int) Reply {
	return Reply{Status: code, bare: true}
}

// JSON is a reply with an application/json payload.
func JSON(status int, data any) Reply {
	return Reply{Status: status, Type: mediatype.JSON, Data: data}
}

// Content is a reply with a payload of the given media type.
func Content(status int, contentType string, data any) Reply {
	return Reply{Status: status, Type: contentType, Data: data}
}

// WithHeader returns a copy of the reply with a header value added.
func (r Reply) WithHeader(key, value string) Reply {
	h := r.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Add(key, value)
	r.Header = h
	return r
}

// resolved applies the defaults: status 200, and application/json when a
// payload has no type. Bare replies keep an empty type.
func (r Reply) resolved() Reply {
	if r.Status == 0 {
		r.Status = http.StatusOK
	}
	if !r.bare && r.Type == "" && r.Data != nil {
		r.Type = mediatype.JSON
	}
	r.Type = mediatype.Essence(r.Type)
	return r
}
