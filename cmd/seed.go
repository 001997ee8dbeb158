package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/ukydev/car-showroom/internal/server"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample banners, brands and cars",
	Long: `Ensures the admin account exists and loads sample data. Records that
already exist are kept, so the command can be run more than once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *server.App) error {
			if _, err := app.Seeder.EnsureAdmin(ctx, cfg.Admin); err != nil {
				return err
			}
			summary, err := app.Seeder.Sample(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("seeded %d banners, %d brands, %d cars\n", summary.Banners, summary.Brands, summary.Cars)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
