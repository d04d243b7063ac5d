package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oaspipe/internal/testutil"
	"github.com/erraggy/oaspipe/oaserrors"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
router:
  error_mode: permissive
  strategy: chi
  recovery: true
  format_assertion: false
client:
  base_url: https://api.example.com
  timeout: 5s
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, ErrorModePermissive, cfg.Router.ErrorMode)
	assert.Equal(t, StrategyChi, cfg.Router.Strategy)
	assert.True(t, cfg.Router.Recovery)
	require.NotNil(t, cfg.Router.FormatAssertion)
	assert.False(t, *cfg.Router.FormatAssertion)
	assert.Equal(t, "https://api.example.com", cfg.Client.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, FormatJSON, cfg.Log.Format)
}

func TestParse_KeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, ErrorModeDelegate, cfg.Router.ErrorMode)
	assert.Equal(t, StrategyStdlib, cfg.Router.Strategy)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Nil(t, cfg.Router.FormatAssertion)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		option string
	}{
		{"unknown field", "router:\n  bogus: 1\n", "yaml"},
		{"bad error mode", "router:\n  error_mode: loud\n", "Config.Router.ErrorMode"},
		{"bad strategy", "router:\n  strategy: gorilla\n", "Config.Router.Strategy"},
		{"bad url", "client:\n  base_url: not a url\n", "Config.Client.BaseURL"},
		{"negative timeout", "client:\n  timeout: -1s\n", "Config.Client.Timeout"},
		{"bad level", "log:\n  level: chatty\n", "Config.Log.Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, oaserrors.ErrConfig)

			var cerr *oaserrors.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.option, cerr.Option)
		})
	}
}

func TestLoad(t *testing.T) {
	path := testutil.WriteTempFile(t, "oaspipe.yaml", []byte("router:\n  strategy: chi\n"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StrategyChi, cfg.Router.Strategy)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, StrategyStdlib, cfg.Router.Strategy)

	_, err = Load(path + ".missing")
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OASPIPE_ROUTER_ERROR_MODE", "permissive")
	t.Setenv("OASPIPE_CLIENT_TIMEOUT", "250ms")

	cfg, err := Parse([]byte("router:\n  error_mode: delegate\n"))
	require.NoError(t, err)
	assert.Equal(t, ErrorModePermissive, cfg.Router.ErrorMode)
	assert.Equal(t, 250*time.Millisecond, cfg.Client.Timeout)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"OASPIPE_ROUTER_RECOVERY":           "true",
		"OASPIPE_ROUTER_FORMAT_ASSERTION":   "false",
		"OASPIPE_CLIENT_ACCEPT":             "application/json",
		"OASPIPE_CLIENT_VALIDATE_RESPONSES": "1",
		"OASPIPE_LOG_FORMAT":                "json",
		"OASPIPE_LOG_LEVEL":                 "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.True(t, cfg.Router.Recovery)
	require.NotNil(t, cfg.Router.FormatAssertion)
	assert.False(t, *cfg.Router.FormatAssertion)
	assert.Equal(t, "application/json", cfg.Client.Accept)
	assert.True(t, cfg.Client.ValidateResponses)
	assert.Equal(t, FormatJSON, cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level, "empty values are ignored")
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "OASPIPE_CLIENT_TIMEOUT" {
			return "soon", true
		}
		return "", false
	}

	err := Default().ApplyEnv(lookup)
	var cerr *oaserrors.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "OASPIPE_CLIENT_TIMEOUT", cerr.Option)
	assert.Equal(t, "soon", cerr.Value)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Log{Level: "warn", Format: FormatJSON}, &buf)

	log.Info("dropped")
	log.Warn("kept", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"key":"value"`)
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(Log{Level: "debug"}, &buf).Debug("hello", "n", 1)
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "n=1")
}
