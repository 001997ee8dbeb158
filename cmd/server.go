package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/ukydev/car-showroom/internal/server"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the showroom API server",
	Long: `Starts the showroom API server. The admin account from ADMIN_EMAIL and
ADMIN_PASSWORD is created when missing. Usage:

	showroom server
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *server.App) error {
			srv, err := server.New(ctx, app)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
