package commands

import (
	"fmt"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// tablesQuery returns the catalog query listing tables and views for the
// given dialect. Each dialect spells its catalog differently; the result
// always has name and type columns.
func tablesQuery(dialect string) (*core.Query, error) {
	switch dialect {
	case "sqlite":
		return &core.Query{SQL: `
			SELECT name, type
			FROM sqlite_master
			WHERE type IN ('table', 'view')
			AND name NOT LIKE 'sqlite_%'
			ORDER BY type DESC, name`}, nil
	case "postgres":
		return &core.Query{SQL: `
			SELECT table_name AS name, table_type AS type
			FROM information_schema.tables
			WHERE table_schema = 'public'
			ORDER BY table_type, table_name`}, nil
	case "mysql":
		return &core.Query{SQL: `
			SELECT table_name AS name, table_type AS type
			FROM information_schema.tables
			WHERE table_schema = DATABASE()
			ORDER BY table_type, table_name`}, nil
	default:
		return nil, fmt.Errorf("table listing is not supported for dialect %q", dialect)
	}
}

// schemaQuery returns the column description query for one table. The
// table name binds as an argument where the dialect allows it; SQLite's
// PRAGMA does not take placeholders.
func schemaQuery(dialect, tableName string) (*core.Query, error) {
	switch dialect {
	case "sqlite":
		return &core.Query{SQL: fmt.Sprintf("PRAGMA table_info(%q)", tableName)}, nil
	case "postgres":
		return &core.Query{
			SQL: `
			SELECT column_name, data_type, is_nullable, column_default
			FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1
			ORDER BY ordinal_position`,
			Args: []any{tableName},
		}, nil
	case "mysql":
		return &core.Query{
			SQL: `
			SELECT column_name, data_type, is_nullable, column_default
			FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ?
			ORDER BY ordinal_position`,
			Args: []any{tableName},
		}, nil
	default:
		return nil, fmt.Errorf("schema introspection is not supported for dialect %q", dialect)
	}
}
