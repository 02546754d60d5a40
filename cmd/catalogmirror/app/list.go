package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/catalogmirror/internal/cmd/output"
)

// NewListCommand creates the list command.
func (a *App) NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		GroupID: "core",
		Short:   "List mirrored resources",
	}
	cmd.AddCommand(a.newListProductsCommand())
	return cmd
}

func (a *App) newListProductsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "products <category>",
		Short: "List the mirrored products of a category ordered by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.Store(cmd.Context())
			if err != nil {
				return err
			}
			products, err := s.ProductsByCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			format := a.format()
			var data any = products
			if format == output.FormatTable || format == output.FormatWide {
				data = output.ProductsTable(products, format == output.FormatWide)
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}
}
