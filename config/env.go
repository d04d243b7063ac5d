package config

import (
	"time"

	"github.com/spf13/cast"

	"github.com/erraggy/oaspipe/oaserrors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OASPIPE_"

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from OASPIPE_* variables found by lookup.
// A value that cannot be converted is reported as an *oaserrors.ConfigError
// naming the variable.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	e := envReader{lookup: lookup}
	e.str("ROUTER_ERROR_MODE", &c.Router.ErrorMode)
	e.str("ROUTER_STRATEGY", &c.Router.Strategy)
	e.boolean("ROUTER_RECOVERY", &c.Router.Recovery)
	e.boolean("ROUTER_REQUEST_LOGGING", &c.Router.RequestLogging)
	e.boolean("ROUTER_EXTRA_CODECS", &c.Router.ExtraCodecs)
	var assert bool
	if e.boolean("ROUTER_FORMAT_ASSERTION", &assert) {
		c.Router.FormatAssertion = &assert
	}

	e.str("CLIENT_BASE_URL", &c.Client.BaseURL)
	e.str("CLIENT_ACCEPT", &c.Client.Accept)
	e.duration("CLIENT_TIMEOUT", &c.Client.Timeout)
	e.boolean("CLIENT_VALIDATE_RESPONSES", &c.Client.ValidateResponses)
	e.boolean("CLIENT_EXTRA_CODECS", &c.Client.ExtraCodecs)

	e.str("LOG_LEVEL", &c.Log.Level)
	e.str("LOG_FORMAT", &c.Log.Format)
	return e.err
}

// envReader applies overrides until the first conversion error.
type envReader struct {
	lookup LookupFunc
	err    error
}

func (e *envReader) get(name string) (string, bool) {
	if e.err != nil || e.lookup == nil {
		return "", false
	}
	v, ok := e.lookup(EnvPrefix + name)
	return v, ok && v != ""
}

func (e *envReader) fail(name, value string, err error) {
	e.err = &oaserrors.ConfigError{Option: EnvPrefix + name, Value: value, Message: "invalid environment override", Cause: err}
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) boolean(name string, dst *bool) bool {
	v, ok := e.get(name)
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		e.fail(name, v, err)
		return false
	}
	*dst = b
	return true
}

func (e *envReader) duration(name string, dst *time.Duration) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = d
}
