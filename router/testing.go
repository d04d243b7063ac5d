package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
)

// TestRequest builds requests for testing routers.
type TestRequest struct {
	method  string
	path    string
	headers http.Header
	body    io.Reader
	query   url.Values
}

// NewTestRequest creates a new test request builder.
//
// Example:
//
//	rec := router.NewTestRequest(http.MethodGet, "/pets").
//		Query("limit", "10").
//		Accept("application/json").
//		Execute(r)
func NewTestRequest(method, path string) *TestRequest {
	return &TestRequest{
		method:  method,
		path:    path,
		headers: make(http.Header),
		query:   make(url.Values),
	}
}

// Header adds a header.
func (r *TestRequest) Header(key, value string) *TestRequest {
	r.headers.Add(key, value)
	return r
}

// Accept sets the Accept header.
func (r *TestRequest) Accept(value string) *TestRequest {
	r.headers.Set("Accept", value)
	return r
}

// Query adds a query parameter.
func (r *TestRequest) Query(key, value string) *TestRequest {
	r.query.Add(key, value)
	return r
}

// JSONBody sets a JSON request body.
// Panics if the body cannot be marshaled to JSON, indicating a test setup error.
func (r *TestRequest) JSONBody(body any) *TestRequest {
	data, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("router: JSONBody failed to marshal body: %v", err))
	}
	r.body = bytes.NewReader(data)
	r.headers.Set("Content-Type", "application/json")
	return r
}

// Body sets a raw request body.
func (r *TestRequest) Body(contentType string, body io.Reader) *TestRequest {
	r.body = body
	r.headers.Set("Content-Type", contentType)
	return r
}

// TestPart is one part of a multipart test body.
type TestPart struct {
	Name        string
	FileName    string
	ContentType string
	Data        []byte
}

// MultipartBody sets a multipart/form-data body with parts in the given order.
// Panics if a part cannot be written, indicating a test setup error.
func (r *TestRequest) MultipartBody(parts ...TestPart) *TestRequest {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		disposition := fmt.Sprintf(`form-data; name=%q`, p.Name)
		if p.FileName != "" {
			disposition += fmt.Sprintf(`; filename=%q`, p.FileName)
		}
		h.Set("Content-Disposition", disposition)
		if p.ContentType != "" {
			h.Set("Content-Type", p.ContentType)
		}
		pw, err := w.CreatePart(h)
		if err == nil {
			_, err = pw.Write(p.Data)
		}
		if err != nil {
			panic(fmt.Sprintf("router: MultipartBody failed to write part %q: %v", p.Name, err))
		}
	}
	if err := w.Close(); err != nil {
		panic(fmt.Sprintf("router: MultipartBody failed to close: %v", err))
	}
	r.body = &buf
	r.headers.Set("Content-Type", w.FormDataContentType())
	return r
}

// Build creates the http.Request.
func (r *TestRequest) Build() *http.Request {
	path := r.path
	if len(r.query) > 0 {
		path += "?" + r.query.Encode()
	}

	req := httptest.NewRequest(r.method, path, r.body)
	for k, v := range r.headers {
		req.Header[k] = v
	}
	return req
}

// Execute runs the request against a handler and returns the response.
func (r *TestRequest) Execute(handler http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r.Build())
	return rec
}

// StubHandler creates a handler that returns a fixed reply.
//
// Example:
//
//	router.WithHandler("deletePet", router.StubHandler(router.Status(http.StatusNoContent)))
func StubHandler(reply Reply) HandlerFunc {
	return func(_ context.Context, _ *Request) (Reply, error) {
		return reply, nil
	}
}

// StubHandlerFunc creates a handler that calls fn.
// Useful for asserting request contents in tests.
//
// Example:
//
//	router.WithHandler("getPet", router.StubHandlerFunc(func(req *router.Request) router.Reply {
//		petID := req.PathParams["petId"]
//		// assertions on petID
//		return router.JSON(http.StatusOK, pet)
//	}))
func StubHandlerFunc(fn func(req *Request) Reply) HandlerFunc {
	return func(_ context.Context, req *Request) (Reply, error) {
		return fn(req), nil
	}
}
