// Package mysql provides the MySQL dialect adapter.
//
// This file registers the adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/sqlbridge/pkg/adapters/mysql"
package mysql

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
)

func init() {
	adapter.Register("mysql", func(ctx context.Context, cfg adapter.Config, logger *slog.Logger) (adapter.Adapter, error) {
		return New(ctx, cfg, logger)
	})
}
