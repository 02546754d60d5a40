package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/catalogmirror/internal/cmd/output"
)

// NewConfigCommand creates the config command.
func (a *App) NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		GroupID: "management",
		Short:   "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := output.Format(a.flags.Format)
			if format != output.FormatJSON {
				format = output.FormatYAML
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), a.config)
		},
	})
	return cmd
}
