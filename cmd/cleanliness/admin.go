package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/storage"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/application"
)

// adminPasswordEnv supplies the password so it stays out of shell history.
const adminPasswordEnv = "CLEANLINESS_ADMIN_PASSWORD"

func newCreateAdminCommand(root *rootOptions) *cobra.Command {
	var username, fullName string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long:  "Create an admin account. The password is read from " + adminPasswordEnv + ".",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := os.Getenv(adminPasswordEnv)
			if password == "" {
				return errors.New(adminPasswordEnv + " is not set")
			}
			cfg, err := loadConfig(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg.Database, nil)
			if err != nil {
				return err
			}
			defer storage.Close(db)

			auth, err := application.NewAuthService(storage.NewUserRepository(db), cfg.Auth, nil, nil)
			if err != nil {
				return err
			}
			user, err := auth.Bootstrap(cmd.Context(), username, password, fullName)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Username, user.ID)
			return err
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "Login name")
	cmd.Flags().StringVar(&fullName, "full-name", "Administrator", "Display name")
	return cmd
}
