package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"

	"github.com/erraggy/oastools/parser"

	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/internal/httputil"
	"github.com/erraggy/oaspipe/logging"
	"github.com/erraggy/oaspipe/negotiate"
	"github.com/erraggy/oaspipe/oaserrors"
	"github.com/erraggy/oaspipe/opdef"
	"github.com/erraggy/oaspipe/schemareg"
)

// operation is one installed route with everything needed to serve it.
type operation struct {
	def     *opdef.Definition
	matcher *negotiate.Matcher
	handler HandlerFunc
}

// Router serves the operations of an OpenAPI document. It is an
// http.Handler and is safe for concurrent use once constructed.
type Router struct {
	opts       options
	defs       opdef.Definitions
	registry   *schemareg.Registry
	operations map[string]*operation
	encoders   *codec.Registry[codec.EncodeFunc]
	decoders   *codec.Registry[codec.DecodeFunc]
	routes     []Route
	handler    http.Handler
}

// New builds a router for a parsed OAS 3 document. Every schema of every
// operation is compiled up front; routes are installed only for operations
// with a bound handler, or for all of them when a fallback is set.
//
// Example:
//
//	doc, err := opdef.ParseFile("petstore.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	r, err := router.New(doc,
//		router.WithHandler("listPets", store.ListPets),
//		router.WithHandler("getPet", store.GetPet),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", r)
func New(doc *parser.ParseResult, opts ...Option) (*Router, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	defs, err := opdef.Extract(doc)
	if err != nil {
		return nil, err
	}
	oas3, _ := doc.OAS3Document()
	registry, err := schemareg.ForDefinitions(defs,
		schemareg.WithComponents(oas3.Components),
		schemareg.WithFormatAssertion(o.formatAssert),
		schemareg.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}

	rt := &Router{
		opts:       o,
		defs:       defs,
		registry:   registry,
		operations: make(map[string]*operation),
		encoders:   codec.NewEncoders().AddAll(o.encoders),
		decoders:   codec.NewDecoders().AddAll(o.decoders),
	}
	if err := rt.install(); err != nil {
		return nil, err
	}
	routed, err := o.strategy.Build(rt.routes, http.HandlerFunc(rt.dispatch), o.notFound)
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "routes", Message: "cannot install routes", Cause: err}
	}
	rt.handler = rt.chain(routed)
	return rt, nil
}

// install binds handlers to operations and records the routes.
func (rt *Router) install() error {
	for _, id := range slices.Sorted(maps.Keys(rt.opts.handlers)) {
		if _, ok := rt.defs[id]; !ok {
			return &oaserrors.ConfigError{Option: "handlers", Value: id, Message: "no such operation"}
		}
	}

	for _, id := range rt.defs.IDs() {
		def := rt.defs[id]
		h, bound := rt.opts.handlers[id]
		if !bound {
			h = rt.opts.fallback
		}
		if h == nil {
			rt.opts.logger.Debug("operation not routed: no handler", "operation", id)
			continue
		}
		if def.Method == http.MethodTrace {
			return &oaserrors.ConfigError{Option: "handlers", Value: id, Message: "TRACE operations cannot be served"}
		}
		if _, err := compileTemplate(def.Path); err != nil {
			return &oaserrors.ConfigError{Option: "paths", Value: def.Path, Message: "invalid path template", Cause: err}
		}
		m, err := negotiate.ForDefinition(def)
		if err != nil {
			return fmt.Errorf("router: operation %s: %w", id, err)
		}
		rt.operations[id] = &operation{def: def, matcher: m, handler: h}
		rt.routes = append(rt.routes, Route{Method: def.Method, Path: def.Path, OperationID: id})
		rt.opts.logger.Debug("operation routed", "operation", id, "method", def.Method, "path", def.Path)
	}
	return nil
}

// chain wraps h with the built-in and user middleware. User middleware is
// outermost, the first one given wraps all the others.
func (rt *Router) chain(h http.Handler) http.Handler {
	if rt.opts.recovery {
		h = recoveryMiddleware(rt.opts.errorHandler)(h)
	}
	if rt.opts.requestLogging {
		h = loggingMiddleware()(h)
	}
	h = requestIDMiddleware(rt.opts.logger)(h)
	for i := len(rt.opts.middleware) - 1; i >= 0; i-- {
		h = rt.opts.middleware[i](h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

// Routes returns the installed routes, ordered by operation id.
func (rt *Router) Routes() []Route {
	return slices.Clone(rt.routes)
}

// Definitions returns the operations extracted from the document,
// including those without a route.
func (rt *Router) Definitions() opdef.Definitions {
	return rt.defs
}

// dispatch serves a request the strategy resolved to a route.
func (rt *Router) dispatch(w http.ResponseWriter, r *http.Request) {
	m, ok := routeFrom(r.Context())
	if !ok {
		rt.opts.notFound.ServeHTTP(w, r)
		return
	}
	op := rt.operations[m.route.OperationID]
	ctx := r.Context()
	log := logging.FromContext(ctx, rt.opts.logger).With("operation", op.def.ID)

	req, err := rt.prepare(ctx, r, op, m.params)
	if err != nil {
		rt.fail(w, r, log, err)
		return
	}

	reply, err := op.handler(ctx, req)
	if mp, ok := req.Multipart(); ok {
		if derr := mp.Drain(); derr != nil && err == nil {
			err = derr
		}
	}
	if err != nil {
		rt.fail(w, r, log, err)
		return
	}
	if err := rt.reply(ctx, w, op, req, reply, log); err != nil {
		rt.fail(w, r, log, err)
	}
}

// reply checks a handler reply against the operation's responses, then
// validates, encodes and writes it.
func (rt *Router) reply(ctx context.Context, w http.ResponseWriter, op *operation, req *Request, reply Reply, log logging.Logger) error {
	reply = reply.resolved()
	violation := func(kind oaserrors.ContractKind, cause error) error {
		return &oaserrors.ContractError{
			Kind:        kind,
			OperationID: op.def.ID,
			Status:      reply.Status,
			ContentType: reply.Type,
			Cause:       cause,
		}
	}

	if reply.bare && reply.Data != nil {
		return violation(oaserrors.ContractUnexpectedBody, nil)
	}
	if reply.Type != "" && httputil.IsNoBodyStatus(reply.Status) {
		return violation(oaserrors.ContractUnexpectedBody, errors.New("status forbids a body"))
	}
	clause := op.matcher.GetBest(reply.Status)
	if !negotiate.IsResponseTypeValid(reply.Type, clause.Declared, req.Accepted) {
		return violation(oaserrors.ContractUnacceptableType, nil)
	}

	if reply.Type == "" {
		copyHeader(w.Header(), reply.Header)
		w.WriteHeader(reply.Status)
		return nil
	}

	data := reply.Data
	if key, ok := clause.Declared[reply.Type]; ok && rt.registry.Has(key) {
		if seq, isSeq := codec.AsSequence(data); isSeq {
			data = validatedSequence(seq, func(v any) error {
				if err := rt.registry.Validate(key, v); err != nil {
					return violation(oaserrors.ContractInvalidResponse, err)
				}
				return nil
			})
		} else if err := rt.registry.Validate(key, data); err != nil {
			return violation(oaserrors.ContractInvalidResponse, err)
		}
	}

	cctx := &codec.Context{
		OperationID: op.def.ID,
		ContentType: reply.Type,
		Header:      w.Header(),
		Options:     map[string]any{codec.OptionRequest: req.HTTPRequest},
	}
	body, err := rt.encoders.GetBest(reply.Type)(ctx, data, cctx)
	if err != nil {
		return fmt.Errorf("router: encode %s reply of %s: %w", reply.Type, op.def.ID, err)
	}

	copyHeader(w.Header(), reply.Header)
	w.Header().Set("Content-Type", cctx.ContentType)
	w.WriteHeader(reply.Status)
	if body == nil {
		return nil
	}
	if _, err := io.Copy(w, body); err != nil {
		log.Error("response stream failed", "status", reply.Status, "content_type", reply.Type, "error", err)
	}
	if c, ok := body.(io.Closer); ok {
		_ = c.Close()
	}
	return nil
}

// validatedSequence checks every element of seq as it is produced and ends
// the sequence at the first failure.
func validatedSequence(seq codec.Sequence, validate func(any) error) codec.Sequence {
	return func(yield func(any, error) bool) {
		for item, err := range seq {
			if err == nil {
				err = validate(item)
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

func copyHeader(dst, src http.Header) {
	for k, v := range src {
		dst[k] = v
	}
}
