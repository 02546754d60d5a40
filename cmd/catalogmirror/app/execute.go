package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/catalogmirror/internal/cmd/output"
	"github.com/agentstation/catalogmirror/internal/config"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.out)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "catalogmirror",
		Short:   "Product catalog mirror",
		Version: a.version,
		Long: `catalogmirror keeps a local product database in sync with a remote
catalog API. Categories are fetched and diffed against the mirror, then
manufacturer availability feeds update the stock status of known products.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.ConfigFile, "config", "", "config file (default is ./catalogmirror.yaml or $HOME/catalogmirror.yaml)")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolVarP(&a.flags.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.BoolVar(&a.flags.NoColor, "no-color", false, "disable colored output")
	pf.StringVarP(&a.flags.Format, "format", "o", "", "output format: table, json, yaml, wide")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("catalogmirror {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand loads configuration and rebuilds the logger once flags are parsed.
func (a *App) setupCommand(_ *cobra.Command, _ []string) error {
	if _, err := output.ParseFormat(a.flags.Format); err != nil {
		return err
	}

	if !a.configFixed {
		cfg, err := config.Load(config.LoadOptions{ConfigFile: a.flags.ConfigFile})
		if err != nil {
			return err
		}
		a.config = cfg
	}

	logger := NewLogger(a.config, a.flags)
	a.logger = &logger
	logging.SetDefault(logger)
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewRunCommand())
	rootCmd.AddCommand(a.NewSyncCommand())
	rootCmd.AddCommand(a.NewListCommand())
	rootCmd.AddCommand(a.NewFetchCommand())

	rootCmd.AddCommand(a.NewConfigCommand())
	rootCmd.AddCommand(a.NewVersionCommand())
}

// format resolves the output format for this invocation.
func (a *App) format() output.Format {
	return output.DetectFormat(a.flags.Format)
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
