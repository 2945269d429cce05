// Package sqlite provides the SQLite dialect adapter.
package sqlite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/dialect"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient/dbclient"
)

// Adapter implements adapter.Adapter for SQLite. Queries are written with
// ? placeholders; explicit isolation levels are rejected because the
// backend has a single isolation mode.
type Adapter struct {
	*adapter.Base
}

// New validates the database path, opens the file, and wires the shared
// pipeline over it. If logger is nil, a discard logger is used.
func New(ctx context.Context, cfg adapter.Config, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	params, err := parseParams(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("invalid sqlite params: %w", err)
	}

	path := pathFromURL(cfg.URL)
	if path == "" {
		return nil, fmt.Errorf("malformed connection string: database path is empty")
	}

	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = dialect.SQLite.DefaultMaxConns
	}
	// Each connection to an in-memory database sees its own empty
	// database, so the pool must not grow past one.
	if inMemory(path) {
		cfg.MaxConnections = 1
	}

	client := cfg.Client
	if client == nil {
		client, err = openLocal(ctx, buildDSN(path, params), cfg.MaxConnections, cfg.IdleTimeout, logger)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("sqlite adapter ready", "path", path, "max_connections", cfg.MaxConnections)
	return &Adapter{Base: adapter.NewBase(*dialect.SQLite, client, cfg, logger)}, nil
}

func openLocal(ctx context.Context, dsn string, maxConns int, idleTimeout time.Duration, logger *slog.Logger) (hostclient.Client, error) {
	client, err := dbclient.Open(ctx, "sqlite", dsn, core.PlaceholderQuestion, logger)
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

// pathFromURL strips an optional sqlite:// scheme. file: URIs, plain paths,
// and :memory: pass through untouched.
func pathFromURL(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}

func inMemory(path string) bool {
	return strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
}

// buildDSN appends the configured connection options to the path, promoting
// it to a file: URI when any option is present.
func buildDSN(path string, params *Params) string {
	opts := make([]string, 0, 2)
	if params.ReadOnly {
		opts = append(opts, "mode=ro")
	}
	if params.BusyTimeout > 0 {
		opts = append(opts, fmt.Sprintf("_pragma=busy_timeout(%d)", params.BusyTimeout))
	}
	if len(opts) == 0 {
		return path
	}

	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(opts, "&")
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
