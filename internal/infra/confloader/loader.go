package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "HOSTDECK_"

// Loader loads configuration from multiple sources.
type Loader struct {
	k            *koanf.Koanf
	envPrefix    string
	filePath     string
	fileOptional bool
	overrides    map[string]any
	skipEnv      bool
	loaded       bool
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets a configuration file that must exist.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
		l.fileOptional = false
	}
}

// WithOptionalConfigFile sets a configuration file that is skipped when
// it does not exist.
func WithOptionalConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
		l.fileOptional = true
	}
}

// WithoutEnv disables the environment source.
func WithoutEnv() Option {
	return func(l *Loader) {
		l.skipEnv = true
	}
}

// WithOverrides sets values applied after every other source.
// Keys use dotted paths, e.g. "gateway.timeout".
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		l.overrides = values
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads every source in priority order and unmarshals into target.
// Fields of target that no source sets keep their current values.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			if !(l.fileOptional && errors.Is(err, fs.ErrNotExist)) {
				return fmt.Errorf("load config file: %w", err)
			}
		}
	}

	if !l.skipEnv {
		if err := l.LoadEnv(); err != nil {
			return err
		}
	}

	if len(l.overrides) > 0 {
		if err := l.LoadMap(l.overrides); err != nil {
			return err
		}
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.loaded = true
	return nil
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}
	return nil
}

// LoadEnv loads configuration from environment variables.
//
// A single underscore separates levels: HOSTDECK_GATEWAY_TIMEOUT sets
// gateway.timeout. Configuration keys therefore never contain
// underscores.
func (l *Loader) LoadEnv() error {
	transform := func(s string) string {
		s = strings.TrimPrefix(s, l.envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "_", ".")
	}

	if err := l.k.Load(env.Provider(l.envPrefix, ".", transform), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// LoadMap loads configuration from a map of dotted keys.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into target using koanf
// struct tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// Get returns a value from the configuration by key.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// IsLoaded returns true if configuration has been loaded.
func (l *Loader) IsLoaded() bool {
	return l.loaded
}

// Keys returns all configuration keys.
func (l *Loader) Keys() []string {
	return l.k.Keys()
}
