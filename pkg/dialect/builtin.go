package dialect

import (
	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// Built-in profiles for the three shipped dialects. Adapter packages under
// pkg/adapters reference these directly; they are exported so embedders can
// build custom adapters on the same data.
var (
	// Postgres uses $1-style markers and understands native array literals.
	Postgres = &Profile{
		Name:              "postgres",
		Placeholder:       core.PlaceholderDollar,
		ArrayLiterals:     true,
		DefaultMaxConns:   10,
		SupportsIsolation: true,
	}

	// MySQL uses ? markers. The isolation statement precedes BEGIN because
	// SET TRANSACTION configures the next transaction, not the current one.
	MySQL = &Profile{
		Name:                 "mysql",
		Placeholder:          core.PlaceholderQuestion,
		DefaultMaxConns:      10,
		SupportsIsolation:    true,
		IsolationBeforeBegin: true,
	}

	// SQLite uses ? markers and rejects explicit isolation levels.
	SQLite = &Profile{
		Name:            "sqlite",
		Placeholder:     core.PlaceholderQuestion,
		DefaultMaxConns: 5,
	}
)
