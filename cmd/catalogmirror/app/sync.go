package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/catalogmirror/internal/cmd/output"
	"github.com/agentstation/catalogmirror/pkg/logging"
)

// NewSyncCommand creates the sync command, which runs exactly one cycle.
func (a *App) NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Run a single reconciliation cycle",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), a.logger)

			client, err := a.Client(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Update(ctx)
			if err != nil {
				return err
			}

			format := a.format()
			var data any = res
			if format == output.FormatTable || format == output.FormatWide {
				data = output.CycleTable(res)
			}
			if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), data); err != nil {
				return err
			}
			a.logger.Info().Msg(res.String())
			return nil
		},
	}
}
