package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/ukydev/car-showroom/internal/server"
)

// recomputeCmd represents the recompute-counts command
var recomputeCmd = &cobra.Command{
	Use:   "recompute-counts",
	Short: "Rewrite every brand's carCount from the cars collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *server.App) error {
			corrected, err := app.Catalog.RecomputeAll(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("%d brand counts corrected\n", corrected)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd)
}
