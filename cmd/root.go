package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ukydev/car-showroom/internal/config"
	"github.com/ukydev/car-showroom/internal/server"
)

var cfg config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "showroom",
	Short: "Car showroom API and maintenance tools",
	Long: `Runs the car showroom REST API and its maintenance commands.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		server.ConfigureLogging(cfg)
	},
}

// withApp connects the shared dependencies, runs fn and disconnects. The
// context is cancelled on SIGINT or SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *server.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = app.Close(context.Background())
	}()
	return fn(ctx, app)
}
