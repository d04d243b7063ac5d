package sdk

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/erraggy/oastools/parser"

	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/negotiate"
	"github.com/erraggy/oaspipe/oaserrors"
	"github.com/erraggy/oaspipe/opdef"
	"github.com/erraggy/oaspipe/schemareg"
)

// ErrUnknownOperation is returned by Call for an operation id the document
// does not declare.
var ErrUnknownOperation = errors.New("unknown operation")

// Client calls the operations of one OpenAPI document. It is safe for
// concurrent use.
type Client struct {
	baseURL  string
	opts     options
	defs     opdef.Definitions
	matchers map[string]*negotiate.Matcher
	// registry is nil unless responses are validated.
	registry *schemareg.Registry
	encoders *codec.Registry[codec.EncodeFunc]
	decoders *codec.Registry[codec.DecodeFunc]
}

// New builds a client for the operations of doc, sending requests to
// baseURL. An empty baseURL falls back to the one set by WithConfig.
//
// Example:
//
//	doc, _ := parser.ParseWithOptions(parser.WithFilePath("petstore.yaml"), parser.WithResolveRefs(true))
//	client, err := sdk.New(doc, "https://pets.example.com")
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := client.Call(ctx, "getPet", sdk.Args{Params: map[string]any{"petId": 7}})
func New(doc *parser.ParseResult, baseURL string, opts ...Option) (*Client, error) {
	defs, err := opdef.Extract(doc)
	if err != nil {
		return nil, err
	}
	oas3, _ := doc.OAS3Document()
	return newClient(defs, oas3.Components, baseURL, opts)
}

// NewFromDefinitions builds a client from already extracted operations.
// Response validation then relies on the schemas having been resolved,
// since component references cannot be followed.
func NewFromDefinitions(defs opdef.Definitions, baseURL string, opts ...Option) (*Client, error) {
	return newClient(defs, nil, baseURL, opts)
}

func newClient(defs opdef.Definitions, components *parser.Components, baseURL string, opts []Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if baseURL == "" {
		baseURL = o.baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() {
		return nil, &oaserrors.ConfigError{Option: "baseURL", Value: baseURL, Message: "must be an absolute URL", Cause: err}
	}
	for _, id := range slices.Sorted(maps.Keys(o.operationAccept)) {
		if _, ok := defs[id]; !ok {
			return nil, &oaserrors.ConfigError{Option: "operationAccept", Value: id, Message: "no such operation"}
		}
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}

	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		opts:     o,
		defs:     defs,
		matchers: make(map[string]*negotiate.Matcher, len(defs)),
		encoders: codec.NewEncoders().AddAll(o.encoders),
		decoders: codec.NewDecoders().AddAll(o.decoders),
	}
	for _, id := range defs.IDs() {
		m, err := negotiate.ForDefinition(defs[id])
		if err != nil {
			return nil, fmt.Errorf("sdk: operation %s: %w", id, err)
		}
		c.matchers[id] = m
	}

	if o.validateResponses {
		regOpts := []schemareg.Option{
			schemareg.WithFormatAssertion(o.formatAssert),
			schemareg.WithLogger(o.logger),
		}
		if components != nil {
			regOpts = append(regOpts, schemareg.WithComponents(components))
		}
		c.registry, err = schemareg.ForDefinitions(defs, regOpts...)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Definitions returns the operations the client can call.
func (c *Client) Definitions() opdef.Definitions {
	return c.defs
}

// BaseURL returns the URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}
