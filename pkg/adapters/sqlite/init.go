// Package sqlite provides the SQLite dialect adapter.
//
// This file registers the adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/sqlbridge/pkg/adapters/sqlite"
package sqlite

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
)

func init() {
	adapter.Register("sqlite", func(ctx context.Context, cfg adapter.Config, logger *slog.Logger) (adapter.Adapter, error) {
		return New(ctx, cfg, logger)
	})
}
