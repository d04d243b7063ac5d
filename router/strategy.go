package router

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/erraggy/oaspipe/opdef"
)

// Route is one installed operation.
type Route struct {
	Method      string
	Path        string
	OperationID string
}

// Strategy maps request paths to routes. The stdlib strategy is the
// default; ChiRouter routes with github.com/go-chi/chi/v5.
type Strategy interface {
	// Build returns a handler that resolves each request to a route and
	// passes it to dispatch with the route and its unescaped path
	// parameters attached via WithRoute. Routes that cannot be installed
	// are reported as an error.
	Build(routes []Route, dispatch http.Handler, notFound http.Handler) (http.Handler, error)
}

type routeKey struct{}

type routeMatch struct {
	route  Route
	params map[string]string
}

// WithRoute attaches the matched route and its path parameters to ctx.
// Custom strategies call it before handing the request to the dispatcher.
func WithRoute(ctx context.Context, route Route, params map[string]string) context.Context {
	return context.WithValue(ctx, routeKey{}, routeMatch{route: route, params: params})
}

func routeFrom(ctx context.Context) (routeMatch, bool) {
	m, ok := ctx.Value(routeKey{}).(routeMatch)
	return m, ok
}

// MatchedPath returns the path template the request was routed by.
//
//	template := router.MatchedPath(r) // e.g., "/pets/{petId}"
func MatchedPath(r *http.Request) string {
	m, _ := routeFrom(r.Context())
	return m.route.Path
}

// PathParam returns an unescaped path parameter of the routed request.
func PathParam(r *http.Request, name string) string {
	m, _ := routeFrom(r.Context())
	return m.params[name]
}

// StdlibRouter routes with the built-in path template matcher. Paths are
// matched in their escaped form, so an encoded "/" stays inside a parameter.
type StdlibRouter struct{}

// Build implements Strategy.
func (StdlibRouter) Build(routes []Route, dispatch http.Handler, notFound http.Handler) (http.Handler, error) {
	byPath := make(map[string]map[string]Route)
	for _, rt := range routes {
		if byPath[rt.Path] == nil {
			byPath[rt.Path] = make(map[string]Route)
		}
		byPath[rt.Path][rt.Method] = rt
	}

	set, err := newTemplateSet(slices.Sorted(maps.Keys(byPath)))
	if err != nil {
		return nil, err
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		template, escaped, found := set.match(r.URL.EscapedPath())
		if !found {
			notFound.ServeHTTP(w, r)
			return
		}
		params, err := unescapeParams(escaped, true)
		if err != nil {
			notFound.ServeHTTP(w, r)
			return
		}
		methods := byPath[template]
		rt, ok := methods[r.Method]
		if !ok {
			methodNotAllowed(w, slices.Sorted(maps.Keys(methods)))
			return
		}
		dispatch.ServeHTTP(w, r.WithContext(WithRoute(r.Context(), rt, params)))
	}), nil
}

// ChiRouter routes with a chi mux. Mux, when set, receives the routes, so
// applications can mount the operations next to their own chi routes.
type ChiRouter struct {
	Mux *chi.Mux
}

// Build implements Strategy. Patterns chi rejects are returned as errors.
func (c ChiRouter) Build(routes []Route, dispatch http.Handler, notFound http.Handler) (h http.Handler, err error) {
	for _, rt := range routes {
		if _, err := compileTemplate(rt.Path); err != nil {
			return nil, err
		}
	}
	defer func() {
		if rec := recover(); rec != nil {
			h, err = nil, fmt.Errorf("router: chi: %v", rec)
		}
	}()

	mux := c.Mux
	if mux == nil {
		mux = chi.NewRouter()
	}
	mux.NotFound(notFound.ServeHTTP)
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		allowed := allowedFor(routes, r.URL.EscapedPath())
		slices.Sort(allowed)
		methodNotAllowed(w, allowed)
	})

	for _, rt := range routes {
		names := opdef.PathParamNames(rt.Path)
		mux.Method(rt.Method, rt.Path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := make(map[string]string, len(names))
			for _, name := range names {
				raw[name] = chi.URLParam(r, name)
			}
			// chi routes on RawPath when the request has one, else on the
			// decoded Path.
			params, err := unescapeParams(raw, r.URL.RawPath != "")
			if err != nil {
				notFound.ServeHTTP(w, r)
				return
			}
			dispatch.ServeHTTP(w, r.WithContext(WithRoute(r.Context(), rt, params)))
		}))
	}
	return mux, nil
}

func unescapeParams(params map[string]string, escaped bool) (map[string]string, error) {
	if !escaped {
		return params, nil
	}
	out := make(map[string]string, len(params))
	for name, v := range params {
		u, err := url.PathUnescape(v)
		if err != nil {
			return nil, err
		}
		out[name] = u
	}
	return out, nil
}

// allowedFor lists the methods of the routes whose template matches path.
func allowedFor(routes []Route, path string) []string {
	var allowed []string
	for _, rt := range routes {
		pt, err := compileTemplate(rt.Path)
		if err != nil {
			continue
		}
		if _, ok := pt.match(path); ok && !slices.Contains(allowed, rt.Method) {
			allowed = append(allowed, rt.Method)
		}
	}
	return allowed
}

func methodNotAllowed(w http.ResponseWriter, allowed []string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
