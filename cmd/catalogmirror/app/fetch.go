package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/catalogmirror/internal/cmd/output"
)

// NewFetchCommand creates the fetch command, which calls the source once
// without touching the mirror.
func (a *App) NewFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fetch",
		GroupID: "core",
		Short:   "Retrieve one payload from the catalog source",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "category <name>",
		Short: "Fetch a category listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.Source()
			if err != nil {
				return err
			}
			items, err := src.Category(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, items, output.ItemsTable(items))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "manufacturer <name>",
		Short: "Fetch a manufacturer availability feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.Source()
			if err != nil {
				return err
			}
			status, err := src.Manufacturer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, status, output.AvailabilityTable(status))
		},
	})
	return cmd
}

// print writes table for table formats and raw otherwise.
func (a *App) print(cmd *cobra.Command, raw any, table output.Data) error {
	format := a.format()
	data := raw
	if format == output.FormatTable || format == output.FormatWide {
		data = table
	}
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
}
