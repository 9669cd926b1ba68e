package config_test

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/relaywire/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvControlURL, config.EnvRelayURL, config.EnvControlUser,
		config.EnvControlPassword, config.EnvControlBearer, config.EnvLogLevel, config.EnvLogFormat,
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "relayctl.yaml", `
control:
  url: "http://localhost:8300"
  user: admin
  password: secret
relay:
  url: "http://localhost:8200"
logging:
  level: debug
  format: json
timeout: 15s
`)
	cfg, err := config.Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8300", cfg.Control.URL)
	assert.Equal(t, "http://localhost:8200", cfg.Relay.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	require.NoError(t, cfg.Validate())

	req, err := http.NewRequest(http.MethodGet, cfg.Control.URL, nil)
	require.NoError(t, err)
	require.NoError(t, cfg.ControlAuth().Apply(req))
	user, pass, ok := req.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "admin", user)
	assert.Equal(t, "secret", pass)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	require.NoError(t, cfg.Validate())
	assert.Error(t, cfg.RequireControl())
	assert.Error(t, cfg.RequireRelay())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "relayctl.yaml", "control:\n  url: http://file:1\n")
	t.Setenv(config.EnvControlURL, "http://env:2")
	t.Setenv(config.EnvControlBearer, "tok")

	cfg, err := config.Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "http://env:2", cfg.Control.URL)
	require.NoError(t, cfg.RequireControl())

	req, err := http.NewRequest(http.MethodGet, cfg.Control.URL, nil)
	require.NoError(t, err)
	require.NoError(t, cfg.ControlAuth().Apply(req))
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", config.EnvRelayURL+"=http://dotenv:3\n"+config.EnvLogFormat+"=json\n")
	t.Cleanup(func() {
		_ = os.Unsetenv(config.EnvRelayURL)
		_ = os.Unsetenv(config.EnvLogFormat)
	})

	cfg, err := config.Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv:3", cfg.Relay.URL)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "bad.yaml", "control: [\n"), "")
	assert.Error(t, err)

	_, err = config.Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{
		Control: config.ControlConfig{URL: "localhost:8300", Password: "x"},
		Relay:   config.RelayConfig{URL: "ftp://relay"},
		Logging: config.LoggingConfig{Level: "loud", Format: "xml"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"control.url", "relay.url", "logging.level", "logging.format", "control.password"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Logging: config.LoggingConfig{Level: "warn", Format: "json"}}
	log := cfg.NewLogger(&buf)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}
