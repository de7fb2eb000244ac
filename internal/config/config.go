// Package config resolves the cache subsystem's configuration from three
// layers: built-in defaults, an optional YAML file, and environment
// variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// configFileName is the per-user config file, looked up under the config
// home directory.
const configFileName = "config.yaml"

// configHomeDirName is the per-user directory holding the config file and
// the default cache root.
const configHomeDirName = ".fantasycache"

// Config holds every tunable of the cache subsystem.
type Config struct {
	// Dir is the cache root directory. Empty means "resolve a default":
	// home-relative if a home directory exists, anchored at the working
	// directory otherwise.
	Dir string `env:"FANTASYCACHE_DIR" yaml:"dir"`

	// TTL is the default time-to-live for ephemeral entries.
	TTL time.Duration `env:"FANTASYCACHE_TTL" yaml:"ttl"`

	// MaxEntries bounds the memory tier.
	MaxEntries int `env:"FANTASYCACHE_MAX_ENTRIES" yaml:"max_entries"`

	// SweepInterval is the background sweep cadence. Zero disables it.
	SweepInterval time.Duration `env:"FANTASYCACHE_SWEEP_INTERVAL" yaml:"sweep_interval"`

	// LoaderTimeout bounds each loader invocation. Zero means no deadline.
	LoaderTimeout time.Duration `env:"FANTASYCACHE_LOADER_TIMEOUT" yaml:"loader_timeout"`

	// StateURL is the endpoint the freshness oracle polls for the current
	// season and week.
	StateURL string `env:"FANTASYCACHE_STATE_URL" yaml:"state_url"`

	// StateTimeout bounds each request to the state endpoint.
	StateTimeout time.Duration `env:"FANTASYCACHE_STATE_TIMEOUT" yaml:"state_timeout"`

	// LogLevel is a zerolog level name (trace, debug, info, warn, error).
	LogLevel string `env:"FANTASYCACHE_LOG_LEVEL" yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TTL:           time.Hour,
		MaxEntries:    500,
		SweepInterval: 5 * time.Minute,
		LoaderTimeout: 30 * time.Second,
		StateURL:      "https://api.sleeper.app/v1/state/nfl",
		StateTimeout:  10 * time.Second,
		LogLevel:      "info",
	}
}

// Load resolves configuration: defaults, then the per-user YAML file if one
// exists, then environment overrides.
func Load() (Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, configHomeDirName, configFileName)
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// LoadFile resolves configuration from defaults plus an explicit YAML file,
// then environment overrides. Unlike Load, a missing file is an error.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// ResolveDir picks the cache root: the configured directory when set, else
// ~/.fantasycache/cache, else the same layout anchored at the working
// directory. The directory is not created here; backend construction does
// that and is the single fatal initialization point.
func (c Config) ResolveDir() string {
	if c.Dir != "" {
		return c.Dir
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, configHomeDirName, "cache")
	}

	return filepath.Join(configHomeDirName, "cache")
}

// mergeFile overlays the YAML file at path onto cfg, treating a missing
// file as "nothing to merge".
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
