package sdk

import (
	"context"
	"net/http"
	"time"

	"github.com/erraggy/oaspipe"
	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/config"
	"github.com/erraggy/oaspipe/logging"
)

// DefaultAccept is sent when neither the call nor the operation names an
// Accept value.
const DefaultAccept = "application/json;q=1, text/*;q=0.5"

// HTTPClient performs requests. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestEditorFn can modify a request before it is sent.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient        HTTPClient
	timeout           time.Duration
	baseURL           string
	accept            string
	operationAccept   map[string]string
	coercer           Coercer
	editors           []RequestEditorFn
	userAgent         string
	logger            logging.Logger
	encoders          map[string]codec.EncodeFunc
	decoders          map[string]codec.DecodeFunc
	validateResponses bool
	formatAssert      bool
}

func defaultOptions() options {
	return options{
		accept:          DefaultAccept,
		operationAccept: make(map[string]string),
		coercer:         DefaultCoercer,
		userAgent:       oaspipe.UserAgent(),
		logger:          logging.NopLogger{},
		encoders:        make(map[string]codec.EncodeFunc),
		decoders:        make(map[string]codec.DecodeFunc),
		formatAssert:    true,
	}
}

// WithHTTPClient replaces the transport. The default is an *http.Client
// using the configured timeout.
func WithHTTPClient(c HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithAccept replaces DefaultAccept for every operation.
func WithAccept(accept string) Option {
	return func(o *options) { o.accept = accept }
}

// WithOperationAccept sets the Accept value of one operation. It applies
// when a call does not name its own.
func WithOperationAccept(operationID, accept string) Option {
	return func(o *options) { o.operationAccept[operationID] = accept }
}

// WithCoercer replaces DefaultCoercer.
func WithCoercer(c Coercer) Option {
	return func(o *options) { o.coercer = c }
}

// WithRequestEditor adds a function run on every request before it is sent.
func WithRequestEditor(fn RequestEditorFn) Option {
	return func(o *options) { o.editors = append(o.editors, fn) }
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithLogger sets the logger used for call tracing.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = logging.OrNop(l) }
}

// WithEncoder registers a request body encoder for a media type or glob.
func WithEncoder(mediaType string, enc codec.EncodeFunc) Option {
	return func(o *options) { o.encoders[mediaType] = enc }
}

// WithDecoder registers a response decoder for a media type or glob.
func WithDecoder(mediaType string, dec codec.DecodeFunc) Option {
	return func(o *options) { o.decoders[mediaType] = dec }
}

// WithExtraCodecs registers the MessagePack and JSON record stream codecs.
func WithExtraCodecs() Option {
	return func(o *options) {
		for k, v := range codec.ExtraEncoders() {
			o.encoders[k] = v
		}
		for k, v := range codec.ExtraDecoders() {
			o.decoders[k] = v
		}
	}
}

// WithResponseValidation validates decoded responses against their
// declared schemas. Failures are reported as unexpected responses.
func WithResponseValidation() Option {
	return func(o *options) { o.validateResponses = true }
}

// WithFormatAssertion toggles validation of the schema "format" keyword
// when responses are validated.
func WithFormatAssertion(enabled bool) Option {
	return func(o *options) { o.formatAssert = enabled }
}

// WithConfig applies the client section of a loaded configuration. A base
// URL passed to New takes precedence over the configured one.
func WithConfig(c config.Client) Option {
	return func(o *options) {
		if c.BaseURL != "" {
			o.baseURL = c.BaseURL
		}
		if c.Accept != "" {
			o.accept = c.Accept
		}
		if c.Timeout > 0 {
			o.timeout = c.Timeout
		}
		o.validateResponses = c.ValidateResponses
		if c.ExtraCodecs {
			WithExtraCodecs()(o)
		}
	}
}
