package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/bake/internal/app"
)

func (c *CLI) newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent cache runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := c.app.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return renderHistory(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntP("limit", "n", app.DefaultHistoryLimit, "Number of runs to list")

	return cmd
}
