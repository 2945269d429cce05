package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext) error {
	ctx := cmd.Context()

	a, cleanup, err := cmdCtx.OpenAdapter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	// History lives in the home directory; no history when unavailable.
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".sqlbridge_history")
	}

	completer := newTableCompleter(ctx, a, cmdCtx.Dialect())

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sqlbridge> ",
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	format := cmdCtx.Format()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sqlbridge REPL (dialect: %s)\n", cmdCtx.Dialect())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	// REPL loop
	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("sqlbridge> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(line, ".") {
			if handled := handleDotCommand(ctx, cmd, cmdCtx, a, line, &format); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("    ...> ")
			continue
		}
		rl.SetPrompt("sqlbridge> ")

		sqlText := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		if err := runREPLStatement(ctx, cmd, a, sqlText, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// runREPLStatement routes reads through QueryRaw and writes through
// ExecuteRaw so DML reports its affected-row count.
func runREPLStatement(ctx context.Context, cmd *cobra.Command, a adapter.Adapter, sqlText, format string) error {
	if isReadStatement(sqlText) {
		return executeAndRender(ctx, cmd, a, &core.Query{SQL: sqlText}, format)
	}

	affected, err := a.ExecuteRaw(ctx, &core.Query{SQL: sqlText})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "OK, %d rows affected\n", affected)
	return nil
}

var readVerbs = map[string]bool{
	"select":   true,
	"with":     true,
	"values":   true,
	"show":     true,
	"pragma":   true,
	"explain":  true,
	"describe": true,
}

func isReadStatement(sqlText string) bool {
	fields := strings.Fields(strings.ToLower(sqlText))
	if len(fields) == 0 {
		return false
	}
	return readVerbs[fields[0]]
}

func handleDotCommand(ctx context.Context, cmd *cobra.Command, cmdCtx *CommandContext, a adapter.Adapter, line string, format *string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())
		return true

	case ".tables":
		q, err := tablesQuery(cmdCtx.Dialect())
		if err == nil {
			err = executeAndRender(ctx, cmd, a, q, *format)
		}
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .schema <table>")
			return true
		}
		q, err := schemaQuery(cmdCtx.Dialect(), parts[1])
		if err == nil {
			err = executeAndRender(ctx, cmd, a, q, *format)
		}
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current format: %s\n", *format)
			return true
		}
		switch parts[1] {
		case "table", "json", "csv", "md", "markdown":
			*format = parts[1]
		default:
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown format: %s (table, json, csv, md)\n", parts[1])
		}
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List tables and views
  .schema <name>  Show columns for a table or view
  .format [name]  Show or set the output format (table, json, csv, md)
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Writes report their affected-row count; reads render as result sets
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for table names.
func newTableCompleter(ctx context.Context, a adapter.Adapter, dialect string) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	if q, err := tablesQuery(dialect); err == nil {
		if rs, err := a.QueryRaw(ctx, q); err == nil {
			for _, row := range rs.Rows {
				if len(row) == 0 {
					continue
				}
				if name, ok := row[0].(string); ok {
					items = append(items, readline.PcItem(name))
				}
			}
		}
	}

	// Add dot-commands
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".format"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
