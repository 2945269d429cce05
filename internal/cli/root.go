// Package cli provides the command-line interface for sqlbridge.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlbridge/internal/cli/commands"
	"github.com/leapstack-labs/sqlbridge/internal/config"
	"github.com/leapstack-labs/sqlbridge/pkg/adapter"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqlbridge",
		Short: "sqlbridge - SQL driver bridge",
		Long: `sqlbridge bridges ORM-style SQL calls onto Postgres, MySQL, and SQLite
through one adapter surface: placeholder translation, argument coercion,
typed result sets, pooled connections, and transactions.

The CLI drives the same adapters for ad-hoc queries, scripts, and
transactional migrations.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Store the logger in context for commands to pick up
			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			// Print config file used (if verbose)
			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
SQL driver bridge for Postgres, MySQL, and SQLite
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sqlbridge.yaml)")
	rootCmd.PersistentFlags().StringP("env", "e", "", "Environment to use from the environments section (e.g. dev, prod)")
	rootCmd.PersistentFlags().String("dialect", "", "Database dialect (postgres, mysql, sqlite)")
	rootCmd.PersistentFlags().String("url", "", "Database connection URL")
	rootCmd.PersistentFlags().Int("max-connections", 0, "Connection pool size (0 = dialect default)")
	rootCmd.PersistentFlags().Duration("idle-timeout", 0, "How long idle connections are kept")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("format", "f", "", "Output format (table|json|csv|md)")

	// Register completion for format flag
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for dialect flag from the adapter registry
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.List(), cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewExecCommand())
	rootCmd.AddCommand(commands.NewScriptCommand())
	rootCmd.AddCommand(commands.NewTxCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqlbridge.

To load completions:

Bash:
  $ source <(sqlbridge completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ sqlbridge completion bash > /etc/bash_completion.d/sqlbridge
  # macOS:
  $ sqlbridge completion bash > $(brew --prefix)/etc/bash_completion.d/sqlbridge

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ sqlbridge completion zsh > "${fpath[1]}/_sqlbridge"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ sqlbridge completion fish | source

  # To load completions for each session, execute once:
  $ sqlbridge completion fish > ~/.config/fish/completions/sqlbridge.fish

PowerShell:
  PS> sqlbridge completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> sqlbridge completion powershell > sqlbridge.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
