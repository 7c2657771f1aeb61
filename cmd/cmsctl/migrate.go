package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"csdept/internal/app"
	"csdept/internal/config"
)

func newMigrateCmd(cfg *config.Config, log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, log, func(a *app.App) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "migrated %d models\n", len(app.Models()))
				return err
			})
		},
	}
}
