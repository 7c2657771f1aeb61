package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"csdept/internal/app"
	"csdept/internal/config"
)

func newRootCmd(cfg *config.Config, log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cmsctl",
		Short:         "Maintenance commands for the CS department CMS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newMigrateCmd(cfg, log),
		newSeedCmd(cfg, log),
		newCreateAdminCmd(cfg, log),
		newPurgeTrashCmd(cfg, log),
	)
	return cmd
}

// withApp opens the application against cfg, migrates it and hands it to fn.
func withApp(cmd *cobra.Command, cfg *config.Config, log *logrus.Logger, fn func(*app.App) error) error {
	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Migrate(); err != nil {
		return err
	}
	return fn(a)
}
