package sdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/mediatype"
	"github.com/erraggy/oaspipe/oaserrors"
	"github.com/erraggy/oaspipe/opdef"
)

// Args are the inputs of one call.
type Args struct {
	// Params holds path, query and header parameter values by name. Slices
	// become repeated query values or comma separated path and header values.
	Params map[string]any
	// Body is encoded with the codec registered for ContentType. A nil Body
	// sends no body and no Content-Type header.
	Body any
	// ContentType defaults to application/json.
	ContentType string
	// Accept overrides the operation and client defaults.
	Accept string
	// Header is copied to the request before parameters are applied.
	Header http.Header
}

// Call performs the operation and returns its decoded response.
//
// Responses whose type falls outside the operation's contract or the Accept
// value are handed to the Coercer. Streamed results (io.Reader,
// codec.Sequence, *codec.MultipartReader) keep the response open until
// Result.Close is called.
func (c *Client) Call(ctx context.Context, operationID string, args Args) (*Result, error) {
	def, ok := c.defs[operationID]
	if !ok {
		return nil, fmt.Errorf("sdk: %w %q", ErrUnknownOperation, operationID)
	}
	log := c.opts.logger.With("operation", operationID)

	req, accept, err := c.newRequest(ctx, def, args)
	if err != nil {
		return nil, err
	}
	log.Debug("sending request", "method", req.Method, "url", req.URL.String())

	// The request body is closed once the exchange is over, whatever the
	// HTTPClient did with it, so streaming encoders stop writing.
	release := func() {
		if req.Body != nil {
			_ = req.Body.Close()
		}
	}
	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		release()
		return nil, fmt.Errorf("sdk: %s %s: %w", req.Method, req.URL.Path, err)
	}

	res, err := c.readResponse(ctx, def, req, resp, accept)
	if err != nil || !streamed(res.Data) {
		release()
	} else {
		res.request = req.Body
	}
	if err != nil {
		_ = resp.Body.Close()
		log.Debug("call failed", "status", resp.StatusCode, "error", err)
		return nil, err
	}
	log.Debug("received response", "status", res.Status, "type", res.Type)
	return res, nil
}

// newRequest builds the request and returns it with the Accept value sent.
// The encoded body is closed when building fails after encoding.
func (c *Client) newRequest(ctx context.Context, def *opdef.Definition, args Args) (req *http.Request, accept string, err error) {
	missing := func(name string) error {
		err := oaserrors.NewInvalidRequest(oaserrors.KindMissingParameter, def.ID, nil)
		err.Parameter = name
		return err
	}
	invalid := func(name string, cause error) error {
		err := oaserrors.NewInvalidRequest(oaserrors.KindInvalidParameter, def.ID, cause)
		err.Parameter = name
		return err
	}

	// Only the first occurrence of a placeholder is substituted.
	path := def.Path
	for _, p := range def.ParametersIn(opdef.InPath) {
		v, ok := args.Params[p.Name]
		if !ok || v == nil {
			return nil, "", missing(p.Name)
		}
		values, err := textValues(v)
		if err != nil {
			return nil, "", invalid(p.Name, err)
		}
		path = strings.Replace(path, "{"+p.Name+"}", url.PathEscape(strings.Join(values, ",")), 1)
	}

	query := make(url.Values)
	for _, p := range def.ParametersIn(opdef.InQuery) {
		v, ok := args.Params[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, "", missing(p.Name)
			}
			continue
		}
		values, err := textValues(v)
		if err != nil {
			return nil, "", invalid(p.Name, err)
		}
		for _, s := range values {
			query.Add(p.Name, s)
		}
	}

	header := args.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	for _, p := range def.ParametersIn(opdef.InHeader) {
		v, ok := args.Params[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, "", missing(p.Name)
			}
			continue
		}
		values, err := textValues(v)
		if err != nil {
			return nil, "", invalid(p.Name, err)
		}
		header.Set(p.Name, strings.Join(values, ","))
	}

	accept = firstNonEmpty(args.Accept, c.opts.operationAccept[def.ID], c.opts.accept)
	header.Set("Accept", accept)
	if c.opts.userAgent != "" {
		header.Set("User-Agent", c.opts.userAgent)
	}

	var body io.Reader
	header.Del("Content-Type")
	if args.Body != nil {
		contentType := firstNonEmpty(args.ContentType, mediatype.JSON)
		cctx := &codec.Context{OperationID: def.ID, ContentType: contentType, Header: header}
		body, err = c.encoders.GetBest(mediatype.Essence(contentType))(ctx, args.Body, cctx)
		if err != nil {
			return nil, "", fmt.Errorf("sdk: encode %s body of %s: %w", contentType, def.ID, err)
		}
		header.Set("Content-Type", cctx.ContentType)
		defer func() {
			if closer, ok := body.(io.Closer); ok && err != nil {
				_ = closer.Close()
			}
		}()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err = http.NewRequestWithContext(ctx, def.Method, target, body)
	if err != nil {
		return nil, "", fmt.Errorf("sdk: build request for %s: %w", def.ID, err)
	}
	req.Header = header

	for _, edit := range c.opts.editors {
		if err := edit(ctx, req); err != nil {
			return nil, "", fmt.Errorf("sdk: edit request for %s: %w", def.ID, err)
		}
	}
	return req, accept, nil
}

// textValues renders a parameter value as one string per element.
func textValues(v any) ([]string, error) {
	switch vv := v.(type) {
	case []string:
		return vv, nil
	case []any:
		out := make([]string, len(vv))
		for i, item := range vv {
			s, err := cast.ToStringE(item)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}
	if s, err := cast.ToStringE(v); err == nil {
		return []string{s}, nil
	}
	return cast.ToStringSliceE(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
