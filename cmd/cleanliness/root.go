package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/coffeescripttech-maker/classroom-cleanliness/infrastructure/storage"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/application"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/platform/logger"
)

// cliAuth is the caller used by commands that read data directly from the
// database on the operator's behalf.
var cliAuth = domain.AuthContext{UserID: "cli", Username: "cli", Role: domain.RoleAdmin}

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "cleanliness",
		Short:         "Classroom cleanliness scoring service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("CLEANLINESS_CONFIG"),
		"Path to the YAML configuration file")

	root.AddCommand(
		newServeCommand(opts),
		newScoreCommand(),
		newLeaderboardCommand(opts),
		newCreateAdminCommand(opts),
	)
	return root
}

func loadConfig(ctx context.Context, path string) (*application.AppConfig, error) {
	cfg := &application.AppConfig{}
	if err := application.NewViperConfigLoader(path).Load(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openDatabase connects with the configured driver.
func openDatabase(cfg application.DatabaseConfig, log *logger.Logger) (*gorm.DB, error) {
	return storage.Open(storage.Config{
		Driver:       cfg.Driver,
		DSN:          cfg.DSN,
		MaxOpenConns: cfg.MaxOpenConns,
		AutoMigrate:  cfg.AutoMigrate,
	}, log)
}
