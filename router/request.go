package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/mediatype"
	"github.com/erraggy/oaspipe/oaserrors"
	"github.com/erraggy/oaspipe/opdef"
	"github.com/erraggy/oaspipe/schemareg"
)

// prepare runs the request side of the pipeline: the accept gate, then
// parameters, then the body. Nothing is decoded for a request that no
// declared response could satisfy.
func (rt *Router) prepare(ctx context.Context, r *http.Request, op *operation, raw map[string]string) (*Request, error) {
	def := op.def
	accepted := mediatype.AcceptedOrAny(strings.Join(r.Header.Values("Accept"), ","))
	if !op.matcher.Acceptable(accepted) {
		return nil, oaserrors.NewInvalidRequest(oaserrors.KindNotAcceptable, def.ID, nil)
	}

	req := &Request{
		HTTPRequest:  r,
		OperationID:  def.ID,
		MatchedPath:  def.Path,
		PathParams:   make(map[string]any),
		QueryParams:  make(map[string]any),
		HeaderParams: make(map[string]any),
		Accepted:     accepted,
	}
	if err := rt.bindParameters(r, def, raw, req); err != nil {
		return nil, err
	}
	if err := rt.bindBody(ctx, r, def, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (rt *Router) bindParameters(r *http.Request, def *opdef.Definition, raw map[string]string, req *Request) error {
	query := r.URL.Query()
	targets := map[opdef.Location]map[string]any{
		opdef.InPath:   req.PathParams,
		opdef.InQuery:  req.QueryParams,
		opdef.InHeader: req.HeaderParams,
	}

	for _, loc := range []opdef.Location{opdef.InPath, opdef.InQuery, opdef.InHeader} {
		for _, p := range def.ParametersIn(loc) {
			var value any
			switch loc {
			case opdef.InPath:
				if v := raw[p.Name]; v != "" {
					value = v
				}
			case opdef.InQuery:
				value = textual(query[p.Name])
			case opdef.InHeader:
				value = textual(r.Header.Values(p.Name))
			}

			if value == nil {
				if p.Required {
					err := oaserrors.NewInvalidRequest(oaserrors.KindMissingParameter, def.ID, nil)
					err.Parameter = p.Name
					return err
				}
				continue
			}

			coerced, err := rt.registry.Coerce(schemareg.ParameterKey(def.ID, p.Name), value)
			if err != nil {
				ierr := oaserrors.NewInvalidRequest(oaserrors.KindInvalidParameter, def.ID, err)
				ierr.Parameter = p.Name
				return ierr
			}
			targets[loc][p.Name] = coerced
		}
	}
	return nil
}

// textual returns nil for no values, the value itself for one and the
// whole list for repeated values.
func textual(values []string) any {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	}
	return values
}

func (rt *Router) bindBody(ctx context.Context, r *http.Request, def *opdef.Definition, req *Request) error {
	contentType := r.Header.Get("Content-Type")
	essence := mediatype.Essence(contentType)
	bodyError := func(kind oaserrors.Kind, cause error) error {
		err := oaserrors.NewInvalidRequest(kind, def.ID, cause)
		err.ContentType = essence
		return err
	}

	if essence == "" {
		if def.Body != nil && def.Body.Required {
			return oaserrors.NewInvalidRequest(oaserrors.KindMissingBody, def.ID, nil)
		}
		return nil
	}
	if def.Body == nil {
		return bodyError(oaserrors.KindUnexpectedBody, nil)
	}
	if !def.Body.Accepts(essence) {
		return bodyError(oaserrors.KindUnsupportedContentType, nil)
	}

	cctx := &codec.Context{
		OperationID: def.ID,
		ContentType: contentType,
		Header:      r.Header,
		Options:     map[string]any{codec.OptionRequest: r},
	}
	decoded, err := rt.decoders.GetBest(essence)(ctx, r.Body, cctx)
	if err != nil {
		if errors.Is(err, codec.ErrUnsupportedContentType) {
			return bodyError(oaserrors.KindUnsupportedContentType, err)
		}
		return bodyError(oaserrors.KindUndecodableBody, err)
	}

	key := schemareg.RequestBodyKey(def.ID, essence)
	req.ContentType = essence
	switch body := decoded.(type) {
	case *codec.MultipartReader:
		req.Kind = BodyMultipart
		req.Body = rt.newMultipart(ctx, def.ID, essence, body)
	case codec.Sequence:
		req.Kind = BodySequence
		req.Body = validatedSequence(body, func(v any) error {
			if err := rt.registry.Validate(key, v); err != nil {
				return bodyError(oaserrors.KindInvalidBody, err)
			}
			return nil
		})
	case io.Reader:
		req.Kind = BodyStream
		req.Body = body
	default:
		if essence == mediatype.Form {
			decoded, err = rt.registry.Coerce(key, decoded)
		} else {
			err = rt.registry.Validate(key, decoded)
		}
		if err != nil {
			return bodyError(oaserrors.KindInvalidBody, err)
		}
		req.Kind = BodyValue
		req.Body = decoded
	}
	return nil
}
