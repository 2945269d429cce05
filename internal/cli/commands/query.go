package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a query against the configured database",
		Long: `Run a read query through the configured dialect adapter.

The SQL uses the dialect's native placeholder style when executed with
bound arguments from code; from the command line the statement is sent
as written. Results render as a table by default; use --format for
json, csv, or markdown output.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  sqlbridge query "SELECT * FROM users" --dialect sqlite --url sqlite://app.db

  # List tables in the target database
  sqlbridge query tables

  # Show schema for a table
  sqlbridge query schema users

  # Output as JSON
  sqlbridge query "SELECT id, name FROM users" --format json

  # Interactive mode
  sqlbridge query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	cmd.AddCommand(newQueryTablesCommand())
	cmd.AddCommand(newQuerySchemaCommand())

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContext(cmd)

	// Determine SQL source
	var sqlText string

	switch {
	case len(args) > 0:
		sqlText = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlText = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlText = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cmdCtx)
	}

	a, cleanup, err := cmdCtx.OpenAdapter(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	return executeAndRender(cmd.Context(), cmd, a, &core.Query{SQL: sqlText}, cmdCtx.Format())
}

func executeAndRender(ctx context.Context, cmd *cobra.Command, a adapter.Adapter, q *core.Query, format string) error {
	rs, err := a.QueryRaw(ctx, q)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return renderResults(cmd.OutOrStdout(), rs, format)
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and views in the target database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)

			q, err := tablesQuery(cmdCtx.Dialect())
			if err != nil {
				return err
			}

			a, cleanup, err := cmdCtx.OpenAdapter(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return executeAndRender(cmd.Context(), cmd, a, q, cmdCtx.Format())
		},
	}
}

// newQuerySchemaCommand creates the schema subcommand.
func newQuerySchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show column definitions for a table or view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			q, err := schemaQuery(cmdCtx.Dialect(), args[0])
			if err != nil {
				return err
			}

			a, cleanup, err := cmdCtx.OpenAdapter(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return executeAndRender(cmd.Context(), cmd, a, q, cmdCtx.Format())
		},
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
