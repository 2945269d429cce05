// Package config loads sqlbridge configuration from the config file,
// environment variables, and CLI flags. It is decoupled from CLI concerns
// so other embedders can load the same configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
)

// TargetConfig describes one database target. The yaml tags keep files
// written by 'sqlbridge init' readable by the loader.
type TargetConfig struct {
	// Dialect selects the adapter: postgres, mysql, sqlite.
	Dialect string `koanf:"dialect" yaml:"dialect,omitempty"`

	// URL is the connection string handed to the adapter.
	URL string `koanf:"url" yaml:"url,omitempty"`

	// MaxConnections caps the adapter's connection pool. Zero means the
	// dialect default.
	MaxConnections int `koanf:"max_connections" yaml:"max_connections,omitempty"`

	// IdleTimeout advises how long idle connections are kept.
	IdleTimeout time.Duration `koanf:"idle_timeout" yaml:"idle_timeout,omitempty"`

	// Params holds adapter-specific configuration (e.g. fallback_urls,
	// read_only).
	Params map[string]any `koanf:"params" yaml:"params,omitempty"`
}

// Config holds the full sqlbridge configuration.
type Config struct {
	// Environment selects a named target from Environments.
	Environment string `koanf:"environment" yaml:"environment,omitempty"`

	Verbose bool `koanf:"verbose" yaml:"verbose,omitempty"`

	// Format is the default output format: table, json, csv, md.
	Format string `koanf:"format" yaml:"format,omitempty"`

	// Target is the active database target after environment overrides.
	Target *TargetConfig `koanf:"target" yaml:"target,omitempty"`

	// Environments maps environment names to target overrides.
	Environments map[string]*TargetConfig `koanf:"environments" yaml:"environments,omitempty"`
}

// Validate checks if the target configuration is usable.
// It uses the adapter registry to determine which dialects are available.
func (t *TargetConfig) Validate() error {
	if t == nil || t.Dialect == "" {
		return fmt.Errorf("target dialect is required (set target.dialect or --dialect)")
	}

	// Use adapter registry as single source of truth
	if !adapter.IsRegistered(strings.ToLower(t.Dialect)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Dialect,
			Available: adapter.List(),
		}
	}

	if t.URL == "" {
		return fmt.Errorf("target url is required (set target.url, --url, or DATABASE_URL)")
	}

	return nil
}

// AdapterConfig converts the target into the adapter package's config.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		URL:            t.URL,
		MaxConnections: t.MaxConnections,
		IdleTimeout:    t.IdleTimeout,
		Params:         t.Params,
	}
}
