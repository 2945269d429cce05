package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names searched in the working directory.
const (
	ConfigFileName    = "sqlbridge.yaml"
	ConfigFileNameAlt = "sqlbridge.yml"
)

// DefaultFormat is the output format when none is configured.
const DefaultFormat = "table"

// loggerKey is used to store the logger in context. The commands package
// retrieves it through GetLogger without importing the cli package.
type loggerKey struct{}

// Package-level config file tracking.
var (
	configFileUsed string
	currentConfig  *Config
)

// findConfigFile finds the config file to use.
// Priority: explicit path > sqlbridge.yaml > sqlbridge.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if _, err := os.Stat(ConfigFileNameAlt); err == nil {
		return ConfigFileNameAlt
	}
	return ""
}

// Load reads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Environment-target overrides merge below flags, so an explicit --url still
// wins over the selected environment's url.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"format":  DefaultFormat,
		"verbose": false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (SQLBRIDGE_ prefix).
	// Transform: SQLBRIDGE_VERBOSE -> verbose; a double underscore descends
	// one level, so SQLBRIDGE_TARGET__MAX_CONNECTIONS -> target.max_connections.
	if err := k.Load(env.Provider("SQLBRIDGE_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "SQLBRIDGE_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Apply the selected environment's target overrides before flags are
	// loaded, so explicitly set flags keep the highest priority.
	envName := k.String("environment")
	if flags != nil && flags.Changed("env") {
		envName, _ = flags.GetString("env")
	}
	if envName != "" && k.Exists("environments."+envName) {
		if err := k.MergeAt(k.Cut("environments."+envName), "target"); err != nil {
			return nil, fmt.Errorf("failed to apply environment %s: %w", envName, err)
		}
	}

	// 5. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")

			// EXPLICIT MAPPING: --env selects the environment; target flags
			// are flat on the command line but nested in the config file.
			switch key {
			case "env":
				return "environment", posflag.FlagVal(flags, f)
			case "dialect", "url", "max_connections", "idle_timeout":
				return "target." + key, posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Target == nil {
		cfg.Target = &TargetConfig{}
	}

	// DATABASE_URL is the conventional variable ORM tooling exports; it
	// fills the url when nothing more specific was configured.
	if cfg.Target.URL == "" {
		cfg.Target.URL = os.Getenv("DATABASE_URL")
	}

	// Expand ${VAR} references so credentials can stay out of the file.
	cfg.Target.URL = expandEnvVars(cfg.Target.URL)

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the most recently loaded configuration, or nil
// when Load has not run.
func GetCurrentConfig() *Config {
	return currentConfig
}

// ResetConfig clears the loaded config and file tracking. Used for testing.
func ResetConfig() {
	configFileUsed = ""
	currentConfig = nil
}

// WithLogger returns a context carrying the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns with environment variable values.
// Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}
