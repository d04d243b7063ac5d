package sdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/mediatype"
	"github.com/erraggy/oaspipe/negotiate"
	"github.com/erraggy/oaspipe/oaserrors"
	"github.com/erraggy/oaspipe/opdef"
)

// Result is a decoded response.
type Result struct {
	// Status is the response status code.
	Status int
	// Type is the media type Data was decoded from, empty when the response
	// had no body or its body was discarded.
	Type string
	// Data is the decoded body.
	Data any

	response *http.Response
	// request is the request body, kept open while Data streams.
	request io.Closer
}

// Response returns the raw response. Its body has been consumed unless Data
// is a stream.
func (r *Result) Response() *http.Response {
	return r.response
}

// Close releases the response body. It is required for streamed results
// and harmless otherwise.
func (r *Result) Close() error {
	if r.request != nil {
		_ = r.request.Close()
	}
	if r.response == nil || r.response.Body == nil {
		return nil
	}
	return r.response.Body.Close()
}

// Mismatch describes a response whose type is not both declared for its
// status and accepted by the call.
type Mismatch struct {
	OperationID string
	Method      string
	Path        string
	Status      int
	// Received is the response media type, empty when there is no body.
	Received string
	Accepted mediatype.Set
	// Declared is nil when nothing is declared for the status.
	Declared []string
	Response *http.Response
}

// Err returns the mismatch as an *oaserrors.UnexpectedResponseError.
func (m *Mismatch) Err() error {
	return &oaserrors.UnexpectedResponseError{
		Method:   m.Method,
		Path:     m.Path,
		Status:   m.Status,
		Received: m.Received,
		Accepted: m.Accepted.Sorted(),
		Declared: m.Declared,
	}
}

// Coercer resolves a Mismatch. It returns the media type to decode the body
// as, "" to discard the body, or an error to fail the call.
type Coercer func(ctx context.Context, m *Mismatch) (string, error)

// DefaultCoercer fails every mismatch.
func DefaultCoercer(_ context.Context, m *Mismatch) (string, error) {
	return "", m.Err()
}

// DiscardingCoercer discards undeclared text bodies, such as plain text
// error pages written by proxies, and fails every other mismatch.
func DiscardingCoercer(ctx context.Context, m *Mismatch) (string, error) {
	if m.Received != "" && mediatype.Matches(m.Received, mediatype.Text) && !slices.Contains(m.Declared, m.Received) {
		return "", nil
	}
	return DefaultCoercer(ctx, m)
}

func (c *Client) readResponse(ctx context.Context, def *opdef.Definition, req *http.Request, resp *http.Response, accept string) (*Result, error) {
	received := mediatype.Essence(resp.Header.Get("Content-Type"))
	accepted := mediatype.AcceptedOrAny(accept)
	clause := c.matchers[def.ID].GetBest(resp.StatusCode)

	final := received
	if !negotiate.IsResponseTypeValid(received, clause.Declared, accepted) {
		m := &Mismatch{
			OperationID: def.ID,
			Method:      req.Method,
			Path:        req.URL.Path,
			Status:      resp.StatusCode,
			Received:    received,
			Accepted:    accepted,
			Declared:    clause.Types(),
			Response:    resp,
		}
		var err error
		if final, err = c.opts.coercer(ctx, m); err != nil {
			return nil, err
		}
	}

	res := &Result{Status: resp.StatusCode, Type: final, response: resp}
	if final == "" {
		_, _ = io.Copy(io.Discard, resp.Body)
		return res, resp.Body.Close()
	}

	contentType := resp.Header.Get("Content-Type")
	if final != received {
		contentType = final
	}
	cctx := &codec.Context{
		OperationID: def.ID,
		ContentType: contentType,
		Header:      resp.Header,
		Options:     map[string]any{codec.OptionResponse: resp},
	}
	data, err := c.decoders.GetBest(final)(ctx, resp.Body, cctx)
	if err != nil {
		return nil, fmt.Errorf("sdk: decode %s response of %s: %w", final, def.ID, err)
	}
	if !streamed(data) {
		if err := resp.Body.Close(); err != nil {
			return nil, fmt.Errorf("sdk: close response of %s: %w", def.ID, err)
		}
	}

	if data, err = c.validate(def, req, resp, clause, final, accepted, data); err != nil {
		return nil, err
	}
	res.Data = data
	return res, nil
}

// validate checks data against the declared response schema when response
// validation is on. Sequences are checked element by element as they are read.
func (c *Client) validate(def *opdef.Definition, req *http.Request, resp *http.Response, clause negotiate.Clause, final string, accepted mediatype.Set, data any) (any, error) {
	if c.registry == nil {
		return data, nil
	}
	key, ok := clause.Declared[final]
	if !ok || !c.registry.Has(key) {
		return data, nil
	}
	unexpected := func(cause error) error {
		return &oaserrors.UnexpectedResponseError{
			Method:   req.Method,
			Path:     req.URL.Path,
			Status:   resp.StatusCode,
			Received: final,
			Accepted: accepted.Sorted(),
			Declared: clause.Types(),
			Cause:    cause,
		}
	}

	if seq, ok := data.(codec.Sequence); ok {
		return codec.Sequence(func(yield func(any, error) bool) {
			for item, err := range seq {
				if err == nil {
					if verr := c.registry.Validate(key, item); verr != nil {
						err = unexpected(verr)
					}
				}
				if !yield(item, err) || err != nil {
					return
				}
			}
		}), nil
	}
	if err := c.registry.Validate(key, data); err != nil {
		return nil, unexpected(err)
	}
	return data, nil
}

func streamed(v any) bool {
	switch v.(type) {
	case io.Reader, codec.Sequence, *codec.MultipartReader:
		return true
	}
	return false
}
