// Package config provides configuration loading for relayctl.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reoring/relaywire/auth"
	"github.com/reoring/relaywire/internal/remote"
)

// Environment variables overriding file values.
const (
	EnvControlURL      = "RELAYWIRE_CONTROL_URL"
	EnvRelayURL        = "RELAYWIRE_RELAY_URL"
	EnvControlUser     = "RELAYWIRE_CONTROL_USER"
	EnvControlPassword = "RELAYWIRE_CONTROL_PASSWORD"
	EnvControlBearer   = "RELAYWIRE_CONTROL_BEARER"
	EnvLogLevel        = "RELAYWIRE_LOG_LEVEL"
	EnvLogFormat       = "RELAYWIRE_LOG_FORMAT"
)

// DefaultTimeout bounds one CLI invocation when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Config is the root configuration structure.
type Config struct {
	Control ControlConfig `yaml:"control"`
	Relay   RelayConfig   `yaml:"relay"`
	Logging LoggingConfig `yaml:"logging"`
	Timeout time.Duration `yaml:"timeout"`
}

// ControlConfig locates and authenticates against the control server.
// User/Password select basic auth; Bearer a static token. Bearer wins when
// both are set.
type ControlConfig struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Bearer   string `yaml:"bearer,omitempty"`
}

// RelayConfig locates the relay server.
type RelayConfig struct {
	URL string `yaml:"url"`
}

// LoggingConfig configures the CLI logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Load reads the YAML file at path and the dotenv file at envFile, then
// applies environment overrides and defaults. Either path may be empty.
// Variables already present in the environment win over the dotenv file.
func Load(path, envFile string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&cfg.Control.URL, EnvControlURL)
	override(&cfg.Relay.URL, EnvRelayURL)
	override(&cfg.Control.User, EnvControlUser)
	override(&cfg.Control.Password, EnvControlPassword)
	override(&cfg.Control.Bearer, EnvControlBearer)
	override(&cfg.Logging.Level, EnvLogLevel)
	override(&cfg.Logging.Format, EnvLogFormat)
}

func setDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
}

// Validate checks the URLs that are set and the logging settings. It does
// not require any URL; use RequireControl and RequireRelay for that.
func (c *Config) Validate() error {
	var errs []error
	if c.Control.URL != "" {
		if _, err := remote.ParseBaseURL(c.Control.URL); err != nil {
			errs = append(errs, fmt.Errorf("control.url: %w", err))
		}
	}
	if c.Relay.URL != "" {
		if _, err := remote.ParseBaseURL(c.Relay.URL); err != nil {
			errs = append(errs, fmt.Errorf("relay.url: %w", err))
		}
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format: must be json or console, got %q", c.Logging.Format))
	}
	if c.Control.User == "" && c.Control.Password != "" {
		errs = append(errs, errors.New("control.password set without control.user"))
	}
	return errors.Join(errs...)
}

// RequireControl reports a missing control server URL.
func (c *Config) RequireControl() error {
	if c.Control.URL == "" {
		return fmt.Errorf("control server URL is not configured (control.url or %s)", EnvControlURL)
	}
	return nil
}

// RequireRelay reports a missing relay server URL.
func (c *Config) RequireRelay() error {
	if c.Relay.URL == "" {
		return fmt.Errorf("relay server URL is not configured (relay.url or %s)", EnvRelayURL)
	}
	return nil
}

// ControlAuth returns the authenticator for the control server.
func (c *Config) ControlAuth() auth.Authenticator {
	switch {
	case c.Control.Bearer != "":
		return auth.Bearer(c.Control.Bearer)
	case c.Control.User != "":
		return auth.Basic(c.Control.User, c.Control.Password)
	default:
		return auth.None()
	}
}

// NewLogger builds the logger described by the logging section. Invalid
// levels fall back to info.
func (c *Config) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level))
	if err != nil || c.Logging.Level == "" {
		level = zerolog.InfoLevel
	}
	if c.Logging.Format == "console" {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
