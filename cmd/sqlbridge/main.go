// Command sqlbridge is the CLI entry point for the SQL driver bridge.
package main

import (
	"os"

	"github.com/leapstack-labs/sqlbridge/internal/cli"

	// Register the built-in dialect adapters.
	_ "github.com/leapstack-labs/sqlbridge/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/sqlbridge/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/sqlbridge/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
