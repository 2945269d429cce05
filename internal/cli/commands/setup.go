package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/internal/config"
	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext resolves the loaded configuration and logger for a command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// OpenAdapter validates the target and connects the configured dialect
// adapter. Returns the adapter and a cleanup function that must be called
// (typically via defer).
func (c *CommandContext) OpenAdapter(ctx context.Context) (adapter.Adapter, func(), error) {
	target := c.Cfg.Target
	if err := target.Validate(); err != nil {
		return nil, nil, err
	}

	a, err := adapter.New(ctx, strings.ToLower(target.Dialect), target.AdapterConfig(), c.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", target.Dialect, err)
	}

	cleanup := func() {
		if err := a.Dispose(context.Background()); err != nil {
			c.Logger.Warn("failed to dispose adapter", "error", err)
		}
	}
	return a, cleanup, nil
}

// Dialect returns the configured dialect name in canonical lowercase form.
func (c *CommandContext) Dialect() string {
	return strings.ToLower(c.Cfg.Target.Dialect)
}

// Format returns the configured output format.
func (c *CommandContext) Format() string {
	if c.Cfg.Format != "" {
		return c.Cfg.Format
	}
	return config.DefaultFormat
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise an empty config.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{Target: &config.TargetConfig{}, Format: config.DefaultFormat}
}
