package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukydev/car-showroom/internal/server"
)

var adminFlags struct {
	name     string
	email    string
	password string
}

// createAdminCmd represents the create-admin command
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the admin account if it does not exist",
	Long: `Creates an admin account. Flags override ADMIN_NAME, ADMIN_EMAIL and
ADMIN_PASSWORD. An existing account with the same email is left unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		admin := cfg.Admin
		if adminFlags.name != "" {
			admin.Name = adminFlags.name
		}
		if adminFlags.email != "" {
			admin.Email = strings.ToLower(strings.TrimSpace(adminFlags.email))
		}
		if adminFlags.password != "" {
			admin.Password = adminFlags.password
		}

		return withApp(cmd, func(ctx context.Context, app *server.App) error {
			created, err := app.Seeder.EnsureAdmin(ctx, admin)
			if err != nil {
				return err
			}
			if created {
				cmd.Printf("admin %s created\n", admin.Email)
			} else {
				cmd.Printf("admin %s already exists\n", admin.Email)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&adminFlags.name, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "login password")
}
