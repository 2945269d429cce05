package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
	"github.com/leapstack-labs/sqlbridge/pkg/template"
)

// NewTxCommand creates the tx command group.
func NewTxCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Transaction helpers",
		Long:  `Run SQL atomically inside a single transaction.`,
	}
	cmd.AddCommand(newTxRunCommand())
	return cmd
}

func newTxRunCommand() *cobra.Command {
	var isolation string

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a SQL script inside one transaction",
		Long: `Run every statement of a script inside a single transaction on one
reserved connection. The transaction commits only if all statements
succeed; any failure rolls back the whole script.`,
		Example: `  # Apply a migration atomically
  sqlbridge tx run migrate.sql

  # With an explicit isolation level
  sqlbridge tx run migrate.sql --isolation "repeatable read"

  # From a pipe
  cat batch.sql | sqlbridge tx run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTxScript(cmd, args, isolation)
		},
	}

	cmd.Flags().StringVar(&isolation, "isolation", "", "Isolation level (read uncommitted, read committed, repeatable read, serializable)")

	return cmd
}

func runTxScript(cmd *cobra.Command, args []string, isolation string) error {
	var script string
	switch {
	case len(args) > 0:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		script = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		script = string(content)
	default:
		return fmt.Errorf("no script provided: pass a file or pipe stdin")
	}

	statements := template.SplitStatements(script)
	if len(statements) == 0 {
		return fmt.Errorf("script contains no statements")
	}

	cmdCtx := NewCommandContext(cmd)
	a, cleanup, err := cmdCtx.OpenAdapter(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	var opts *adapter.TxOptions
	if isolation != "" {
		opts = &adapter.TxOptions{IsolationLevel: isolation}
	}

	ctx := cmd.Context()
	tx, err := a.StartTransaction(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	var total int64
	for i, stmt := range statements {
		affected, err := tx.ExecuteRaw(ctx, &core.Query{SQL: stmt})
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				cmdCtx.Logger.Warn("rollback failed", "error", rbErr)
			}
			return fmt.Errorf("statement %d failed, transaction rolled back: %w", i+1, err)
		}
		total += affected
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Transaction committed (%d statements, %d rows affected)\n", len(statements), total)
	return nil
}
