// Package postgres provides the PostgreSQL dialect adapter.
package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient/dbclient"
)

// Adapter implements adapter.Adapter for PostgreSQL. Queries are written
// with $1-style placeholders and primitive arrays coerce to brace-delimited
// array literals.
type Adapter struct {
	*adapter.Base
}

// New validates the connection string, connects a host client, and wires
// the shared pipeline over it. If logger is nil, a discard logger is used.
func New(ctx context.Context, cfg adapter.Config, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	params, err := parseParams(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres params: %w", err)
	}

	if _, err := pgx.ParseConfig(cfg.URL); err != nil {
		return nil, fmt.Errorf("malformed connection string: %w", err)
	}

	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = dialect.Postgres.DefaultMaxConns
	}

	client := cfg.Client
	if client == nil {
		client, err = connect(ctx, cfg, params, logger)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("postgres adapter ready", "max_connections", cfg.MaxConnections)
	return &Adapter{Base: adapter.NewBase(*dialect.Postgres, client, cfg, logger)}, nil
}

// connect opens a local database/sql client for the primary URL, walking
// the configured fallback URLs when the primary is unreachable.
func connect(ctx context.Context, cfg adapter.Config, params *Params, logger *slog.Logger) (hostclient.Client, error) {
	open := func(ctx context.Context, url string) (hostclient.Client, error) {
		return openLocal(ctx, url, cfg.MaxConnections, cfg.IdleTimeout, logger)
	}

	if len(params.FallbackURLs) == 0 {
		return open(ctx, cfg.URL)
	}

	connector := &hostclient.Connector{
		URL:          cfg.URL,
		FallbackURLs: params.FallbackURLs,
		Open:         open,
		Logger:       logger,
	}
	return connector.Connect(ctx)
}

func openLocal(ctx context.Context, url string, maxConns int, idleTimeout time.Duration, logger *slog.Logger) (hostclient.Client, error) {
	client, err := dbclient.Open(ctx, "pgx", url, core.PlaceholderDollar, logger)
	if err != nil {
		return nil, err
	}
	db := client.DB()
	db.SetMaxOpenConns(maxConns)
	if idleTimeout > 0 {
		db.SetConnMaxIdleTime(idleTimeout)
	}
	return client, nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
