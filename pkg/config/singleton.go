package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// The process-wide configuration used by command entry points. Library
// packages take a *Config argument instead.
var (
	current  atomic.Pointer[Config]
	initOnce sync.Once
	initErr  error
)

// Initialize loads the configuration for this process. The first call wins;
// later calls return the first call's error and change nothing. An empty
// path means built-in defaults plus GUARDIAN_* overrides.
//
// An error here is fatal: Guardian never starts on a configuration it could
// not validate.
func Initialize(path string) error {
	initOnce.Do(func() {
		cfg, err := resolve(path)
		if err != nil {
			initErr = err
			return
		}
		current.Store(cfg)
	})
	return initErr
}

// ReloadConfig re-reads path on every call, unlike Initialize. On failure
// the configuration in place stays untouched.
func ReloadConfig(path string) error {
	cfg, err := resolve(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	current.Store(cfg)
	return nil
}

// resolve turns a --config value into a validated configuration.
func resolve(path string) (*Config, error) {
	if path != "" {
		return LoadConfigWithEnvOverrides(path)
	}
	cfg := Default()
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// GetConfig returns the loaded configuration, nil until one was loaded.
func GetConfig() *Config { return current.Load() }

// MustGetConfig is GetConfig for callers that run after startup succeeded.
func MustGetConfig() *Config {
	cfg := current.Load()
	if cfg == nil {
		panic("config: no configuration loaded")
	}
	return cfg
}

// SetConfig installs cfg directly, bypassing files and validation.
func SetConfig(cfg *Config) { current.Store(cfg) }
