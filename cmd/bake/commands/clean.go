package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/bake/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build products, cached frameworks and the cache file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, _ := cmd.Flags().GetBool("logs")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.CleanOptions{Logs: logs}
			if all {
				opts.Logs = true
				opts.History = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolP("logs", "l", false, "Also remove build logs and their archive")
	cmd.Flags().BoolP("all", "a", false, "Remove everything bake stores, including the run history")

	return cmd
}
