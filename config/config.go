// Package config loads oaspipe settings from YAML with OASPIPE_* environment
// overrides.
//
// A configuration file looks like:
//
//	router:
//	  error_mode: permissive
//	  strategy: chi
//	  recovery: true
//	client:
//	  base_url: https://api.example.com
//	  timeout: 5s
//	log:
//	  level: debug
//	  format: json
//
// Every setting can be overridden by an environment variable named after
// its path, e.g. OASPIPE_ROUTER_ERROR_MODE or OASPIPE_CLIENT_TIMEOUT.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oaspipe/oaserrors"
)

// Router error modes.
const (
	ErrorModeDelegate   = "delegate"
	ErrorModePermissive = "permissive"
)

// Router strategies.
const (
	StrategyStdlib = "stdlib"
	StrategyChi    = "chi"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the complete configuration.
type Config struct {
	Router Router `yaml:"router"`
	Client Client `yaml:"client"`
	Log    Log    `yaml:"log"`
}

// Router configures router.New.
type Router struct {
	ErrorMode       string `yaml:"error_mode" validate:"omitempty,oneof=delegate permissive"`
	Strategy        string `yaml:"strategy" validate:"omitempty,oneof=stdlib chi"`
	Recovery        bool   `yaml:"recovery"`
	RequestLogging  bool   `yaml:"request_logging"`
	ExtraCodecs     bool   `yaml:"extra_codecs"`
	FormatAssertion *bool  `yaml:"format_assertion,omitempty"`
}

// Client configures sdk.New.
type Client struct {
	BaseURL           string        `yaml:"base_url" validate:"omitempty,url"`
	Accept            string        `yaml:"accept"`
	Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
	ValidateResponses bool          `yaml:"validate_responses"`
	ExtraCodecs       bool          `yaml:"extra_codecs"`
}

// Log configures NewLogger.
type Log struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Router: Router{ErrorMode: ErrorModeDelegate, Strategy: StrategyStdlib},
		Client: Client{Timeout: 30 * time.Second},
		Log:    Log{Level: "info", Format: FormatText},
	}
}

// Load reads the configuration file at path, applies environment overrides
// and validates the result. An empty path loads the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return finish(Default())
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is provided by the operator
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "path", Value: path, Message: "cannot read configuration", Cause: err}
	}
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	return finish(cfg)
}

// Parse decodes YAML configuration, applies environment overrides and
// validates the result. Settings missing from data keep their defaults.
func Parse(data []byte) (*Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	return finish(cfg)
}

func decode(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &oaserrors.ConfigError{Option: "yaml", Message: "cannot decode configuration", Cause: err}
	}
	return cfg, nil
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints. The first violation
// is reported as an *oaserrors.ConfigError naming the field.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return &oaserrors.ConfigError{
			Option:  fe.Namespace(),
			Value:   fe.Value(),
			Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
			Cause:   err,
		}
	}
	return &oaserrors.ConfigError{Message: "invalid configuration", Cause: err}
}
