// Package mysql provides the MySQL dialect adapter.
package mysql

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient/dbclient"
)

// Adapter implements adapter.Adapter for MySQL. Queries are written with
// ? placeholders; the isolation statement precedes BEGIN because SET
// TRANSACTION configures the next transaction.
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
		return nil, fmt.Errorf("invalid mysql params: %w", err)
	}

	if _, err := normalizeDSN(cfg.URL); err != nil {
		return nil, fmt.Errorf("malformed connection string: %w", err)
	}

	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = dialect.MySQL.DefaultMaxConns
	}

	client := cfg.Client
	if client == nil {
		client, err = connect(ctx, cfg, params, logger)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("mysql adapter ready", "max_connections", cfg.MaxConnections)
	return &Adapter{Base: adapter.NewBase(*dialect.MySQL, client, cfg, logger)}, nil
}

// connect opens a local database/sql client for the primary URL, walking
// the configured fallback URLs when the primary is unreachable.
func connect(ctx context.Context, cfg adapter.Config, params *Params, logger *slog.Logger) (hostclient.Client, error) {
	open := func(ctx context.Context, raw string) (hostclient.Client, error) {
		return openLocal(ctx, raw, cfg.MaxConnections, cfg.IdleTimeout, logger)
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

func openLocal(ctx context.Context, raw string, maxConns int, idleTimeout time.Duration, logger *slog.Logger) (hostclient.Client, error) {
	dsn, err := normalizeDSN(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed connection string: %w", err)
	}
	client, err := dbclient.Open(ctx, "mysql", dsn, core.PlaceholderQuestion, logger)
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

// normalizeDSN accepts either a mysql:// URL or the driver's native DSN
// and returns a DSN with parseTime enabled, so DATETIME columns scan as
// time.Time instead of raw bytes.
func normalizeDSN(raw string) (string, error) {
	cfg, err := driverConfig(raw)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func driverConfig(raw string) (*mysql.Config, error) {
	if !strings.HasPrefix(raw, "mysql://") {
		return mysql.ParseDSN(raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	cfg := mysql.NewConfig()
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	for key, vals := range u.Query() {
		if len(vals) == 0 {
			continue
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[key] = vals[0]
	}
	return cfg, nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
