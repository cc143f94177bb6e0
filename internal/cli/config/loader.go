package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/yndnr/hostdeck-go/internal/infra/confloader"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".hostdeck", "cli.yaml")
}

func homeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return os.TempDir()
}

// Load reads the configuration at path on top of the defaults. A missing
// file is not an error. overrides carries dotted keys from command-line
// flags and takes precedence over the file and the environment.
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	l := confloader.NewLoader(
		confloader.WithOptionalConfigFile(path),
		confloader.WithOverrides(overrides),
	)
	if err := l.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cli-*.yaml")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Set changes one key in the file at path and returns the saved
// configuration. Environment variables are not folded into the file.
func Set(path, key, value string) (*CLIConfig, error) {
	if !IsKey(key) {
		return nil, fmt.Errorf("config: unknown key %q", key)
	}
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	l := confloader.NewLoader(
		confloader.WithOptionalConfigFile(path),
		confloader.WithoutEnv(),
		confloader.WithOverrides(map[string]any{key: value}),
	)
	if err := l.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := Save(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
