package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"csdept/internal/app"
	"csdept/internal/config"
	"csdept/internal/domain/auth"
)

func newPurgeTrashCmd(cfg *config.Config, log *logrus.Logger) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge-trash",
		Short: "Permanently delete attachments that have been in the trash too long",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan < 0 {
				return errors.New("--older-than must not be negative")
			}
			cutoff := time.Now().UTC().Add(-olderThan)

			return withApp(cmd, cfg, log, func(a *app.App) error {
				n, err := a.Attachments.PurgeTrashed(cmd.Context(), auth.System, cutoff)
				if err != nil {
					return fmt.Errorf("purge after %d attachments: %w", n, err)
				}
				log.WithFields(logrus.Fields{
					"purged": n,
					"cutoff": cutoff.Format(time.RFC3339),
				}).Info("trash purged")
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "purged %d attachments trashed before %s\n", n, cutoff.Format(time.RFC3339))
				return err
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "minimum time in the trash")
	return cmd
}
