package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/yndnr/hostdeck-go/internal/cli/output"
)

// CLIConfig is the configuration for hostdeck-cli.
type CLIConfig struct {
	// Server is the backend base URL.
	Server string `koanf:"server" yaml:"server"`
	// Output is the default output format: table, json or yaml.
	Output string `koanf:"output" yaml:"output"`

	Log     LogConfig     `koanf:"log" yaml:"log"`
	Gateway GatewayConfig `koanf:"gateway" yaml:"gateway"`
	State   StateConfig   `koanf:"state" yaml:"state"`
	TLS     TLSConfig     `koanf:"tls" yaml:"tls"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// GatewayConfig tunes the HTTP gateway.
type GatewayConfig struct {
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
	// Rate limits requests per second; zero disables limiting.
	Rate  float64 `koanf:"rate" yaml:"rate"`
	Burst int     `koanf:"burst" yaml:"burst"`
}

// StateConfig locates the persisted session.
type StateConfig struct {
	Dir string `koanf:"dir" yaml:"dir"`
	// Encrypt seals the session record with a local key.
	Encrypt bool `koanf:"encrypt" yaml:"encrypt"`
}

// TLSConfig adds trust for private backends.
type TLSConfig struct {
	// CA is a PEM bundle trusted in addition to the system roots.
	CA string `koanf:"ca" yaml:"ca,omitempty"`
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"server",
	"output",
	"log.level",
	"log.format",
	"gateway.timeout",
	"gateway.rate",
	"gateway.burst",
	"state.dir",
	"state.encrypt",
	"tls.ca",
}

// IsKey reports whether key is a known configuration key.
func IsKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "http://localhost:8080",
		Output: string(output.FormatTable),
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Gateway: GatewayConfig{
			Timeout: 10 * time.Second,
			Burst:   1,
		},
		State: StateConfig{
			Dir:     filepath.Join(homeDir(), ".hostdeck", "state"),
			Encrypt: true,
		},
	}
}

// Validate checks the configuration for values the console cannot use.
func (c *CLIConfig) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("config: server must be an http(s) URL, got %q", c.Server)
	}
	if _, err := output.ParseFormat(c.Output); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("config: gateway timeout must be positive, got %s", c.Gateway.Timeout)
	}
	if c.Gateway.Rate < 0 || c.Gateway.Burst < 0 {
		return fmt.Errorf("config: gateway rate and burst must not be negative")
	}
	if c.State.Dir == "" {
		return fmt.Errorf("config: state dir is required")
	}
	return nil
}

// SessionDir is where the session database lives.
func (c *CLIConfig) SessionDir() string {
	return filepath.Join(c.State.Dir, "session")
}

// KeyFile is the at-rest encryption key for the session record.
func (c *CLIConfig) KeyFile() string {
	return filepath.Join(c.State.Dir, "session.key")
}
