// Package adapter provides the driver-adapter contract between an ORM-side
// caller and the runtime's SQL capability, plus the shared execution
// pipeline behind it.
//
// This package contains the public contract all dialect adapters implement.
// Concrete adapters are in pkg/adapters/ subdirectories; they differ only
// in their dialect profile and in how they validate connection strings and
// select a host client.
package adapter

import (
	"context"
	"time"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/hostclient"
	"github.com/leapstack-labs/sqlbridge/pkg/template"
)

// Adapter is the surface the ORM-side caller drives. Implementations are
// safe for concurrent use; ordering is only guaranteed within one
// transaction.
type Adapter interface {
	// QueryRaw runs one query and returns named, typed, serialized rows.
	// An empty result is the empty shape, never an error.
	QueryRaw(ctx context.Context, q *core.Query) (*core.ResultSet, error)

	// ExecuteRaw runs one statement and returns the affected-row count,
	// falling back to the host's row count, falling back to zero.
	ExecuteRaw(ctx context.Context, q *core.Query) (int64, error)

	// ExecuteScript splits a multi-statement script on top-level
	// semicolons and runs each statement in order on one connection.
	ExecuteScript(ctx context.Context, script string) error

	// StartTransaction begins a transaction on a reserved connection.
	// A nil opts means default isolation.
	StartTransaction(ctx context.Context, opts *TxOptions) (*Tx, error)

	// Dispose tears the adapter down: pending acquirers are rejected,
	// pooled connections are returned to the host, the template cache is
	// cleared, and the host client is closed.
	Dispose(ctx context.Context) error
}

// Config carries the settings shared by every dialect adapter. Dialect
// specifics ride in Params and are decoded per adapter.
type Config struct {
	// URL is the connection string, validated by the adapter up front.
	URL string

	// MaxConnections caps the reserved-connection pool. Zero means the
	// dialect profile's default.
	MaxConnections int

	// IdleTimeout advises host clients that manage their own idle
	// connections how long to keep them.
	IdleTimeout time.Duration

	// Params holds dialect-specific settings.
	Params map[string]any

	// Client overrides the host client. When nil the adapter constructs
	// its default local client from the URL.
	Client hostclient.Client

	// Cache overrides the template cache. When nil the adapter owns a
	// private one. Share a cache only between adapters of the same
	// dialect; templates are keyed by SQL text alone.
	Cache *template.Cache
}

// TxOptions configures StartTransaction.
type TxOptions struct {
	// IsolationLevel names an ANSI isolation level, case-insensitive.
	// Empty means the backend default.
	IsolationLevel string
}
