package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/pkg/template"
)

// NewScriptCommand creates the script command.
func NewScriptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script [file]",
		Short: "Run a multi-statement SQL script",
		Long: `Run a SQL script through the configured dialect adapter.

The script splits on top-level semicolons; semicolons inside string
literals, quoted identifiers, and comments never split. Statements run
in order on a single connection. Execution stops at the first failing
statement.`,
		Example: `  # Run a schema file
  sqlbridge script schema.sql

  # From a pipe
  cat seed.sql | sqlbridge script`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScript,
	}
	return cmd
}

func runScript(cmd *cobra.Command, args []string) error {
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

	if err := a.ExecuteScript(cmd.Context(), script); err != nil {
		return fmt.Errorf("script failed: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Script complete (%d statements)\n", len(statements))
	return nil
}
