package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// ExecOptions holds options for the exec command.
type ExecOptions struct {
	Input string
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	opts := &ExecOptions{}

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Execute a write statement",
		Long: `Execute a single DDL or DML statement through the configured dialect
adapter and report the affected-row count.`,
		Example: `  # Run a statement directly
  sqlbridge exec "DELETE FROM sessions WHERE expired = 1"

  # From a file
  sqlbridge exec --input migrate.sql

  # From a pipe
  echo "UPDATE users SET active = 0" | sqlbridge exec`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runExec(cmd *cobra.Command, args []string, opts *ExecOptions) error {
	sqlText, err := resolveSQLInput(args, opts.Input)
	if err != nil {
		return err
	}

	cmdCtx := NewCommandContext(cmd)
	a, cleanup, err := cmdCtx.OpenAdapter(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	affected, err := a.ExecuteRaw(cmd.Context(), &core.Query{SQL: sqlText})
	if err != nil {
		return fmt.Errorf("statement failed: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "OK, %d rows affected\n", affected)
	return nil
}

// resolveSQLInput picks the SQL source: arguments, an input file, or piped
// stdin, in that order.
func resolveSQLInput(args []string, inputFile string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case inputFile != "":
		content, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	default:
		return "", fmt.Errorf("no SQL provided: pass a statement, --input, or pipe stdin")
	}
}
