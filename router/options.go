package router

import (
	"net/http"

	"github.com/erraggy/oaspipe/codec"
	"github.com/erraggy/oaspipe/config"
	"github.com/erraggy/oaspipe/logging"
)

// ErrorMode selects how invalid requests are answered.
type ErrorMode int

const (
	// ErrorModeDelegate hands every error to the ErrorHandler.
	ErrorModeDelegate ErrorMode = iota
	// ErrorModePermissive logs invalid requests at info level and answers
	// them with their status and a plain text message. Other errors still
	// go to the ErrorHandler.
	ErrorModePermissive
)

// ErrorHandler writes the response for a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware wraps the router handler.
type Middleware func(http.Handler) http.Handler

// MultipartEventKind discriminates multipart events.
type MultipartEventKind int

const (
	// PartValidated fires once per part, in arrival order.
	PartValidated MultipartEventKind = iota
	// AllPartsDone fires once, after the aggregate passed validation.
	AllPartsDone
)

// MultipartEvent reports the progress of a multipart request body.
type MultipartEvent struct {
	Kind        MultipartEventKind
	OperationID string
	// Name is the part name (PartValidated only).
	Name string
	// Value is the field value or the file placeholder for PartValidated,
	// and the aggregate object for AllPartsDone.
	Value any
}

// Option configures a Router.
type Option func(*options)

type options struct {
	handlers       map[string]HandlerFunc
	fallback       HandlerFunc
	strategy       Strategy
	errorMode      ErrorMode
	errorHandler   ErrorHandler
	notFound       http.Handler
	middleware     []Middleware
	recovery       bool
	requestLogging bool
	logger         logging.Logger
	encoders       map[string]codec.EncodeFunc
	decoders       map[string]codec.DecodeFunc
	formatAssert   bool
	onMultipart    func(MultipartEvent)
}

func defaultOptions() options {
	return options{
		handlers:     make(map[string]HandlerFunc),
		strategy:     StdlibRouter{},
		errorHandler: DefaultErrorHandler,
		notFound:     http.NotFoundHandler(),
		logger:       logging.NopLogger{},
		encoders:     make(map[string]codec.EncodeFunc),
		decoders:     make(map[string]codec.DecodeFunc),
		formatAssert: true,
	}
}

// WithHandler binds a handler to an operation id.
//
//	router.WithHandler("getPet", pets.GetPet)
func WithHandler(operationID string, h HandlerFunc) Option {
	return func(o *options) { o.handlers[operationID] = h }
}

// WithHandlers binds several handlers at once. Binding is explicit: method
// values carry their receiver, nothing is inferred from the map's origin.
//
//	router.WithHandlers(map[string]router.HandlerFunc{
//		"listPets": store.ListPets,
//		"getPet":   store.GetPet,
//	})
func WithHandlers(handlers map[string]HandlerFunc) Option {
	return func(o *options) {
		for id, h := range handlers {
			o.handlers[id] = h
		}
	}
}

// WithFallback serves every operation that has no bound handler. Without a
// fallback such operations get no route at all.
func WithFallback(h HandlerFunc) Option {
	return func(o *options) { o.fallback = h }
}

// WithStrategy sets the routing strategy. Default: StdlibRouter.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithErrorMode sets how invalid requests are answered.
func WithErrorMode(m ErrorMode) Option {
	return func(o *options) { o.errorMode = m }
}

// WithErrorHandler replaces DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) { o.errorHandler = h }
}

// WithNotFoundHandler sets the handler for unrouted paths.
func WithNotFoundHandler(h http.Handler) Option {
	return func(o *options) { o.notFound = h }
}

// WithMiddleware wraps the router. The first middleware is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mw...) }
}

// WithRecovery turns handler panics into 500 responses.
func WithRecovery() Option {
	return func(o *options) { o.recovery = true }
}

// WithRequestLogging logs one line per request at info level.
func WithRequestLogging() Option {
	return func(o *options) { o.requestLogging = true }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = logging.OrNop(l) }
}

// WithEncoder registers an encoder for a media type or range, replacing a
// built-in one.
func WithEncoder(mediaType string, enc codec.EncodeFunc) Option {
	return func(o *options) { o.encoders[mediaType] = enc }
}

// WithDecoder registers a decoder for a media type or range, replacing a
// built-in one.
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

// WithFormatAssertion toggles validation of the schema "format" keyword.
func WithFormatAssertion(enabled bool) Option {
	return func(o *options) { o.formatAssert = enabled }
}

// OnMultipartEvent observes multipart request bodies as they are validated.
func OnMultipartEvent(fn func(MultipartEvent)) Option {
	return func(o *options) { o.onMultipart = fn }
}

// WithConfig applies the router section of a loaded configuration.
func WithConfig(c config.Router) Option {
	return func(o *options) {
		if c.ErrorMode == config.ErrorModePermissive {
			o.errorMode = ErrorModePermissive
		} else {
			o.errorMode = ErrorModeDelegate
		}
		if c.Strategy == config.StrategyChi {
			o.strategy = ChiRouter{}
		}
		o.recovery = c.Recovery
		o.requestLogging = c.RequestLogging
		if c.ExtraCodecs {
			WithExtraCodecs()(o)
		}
		if c.FormatAssertion != nil {
			o.formatAssert = *c.FormatAssertion
		}
	}
}
