package main

import (
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"csdept/internal/app"
	"csdept/internal/config"
	"csdept/internal/domain/auth"
	"csdept/internal/pkg/validator"
)

func newCreateAdminCmd(cfg *config.Config, log *logrus.Logger) *cobra.Command {
	var (
		name          string
		role          string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "create-admin <email>",
		Short: "Create a back-office user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}
			if password == "" {
				return errors.New("--password or --password-stdin is required")
			}

			req := auth.CreateUserRequest{
				Name:     name,
				Email:    args[0],
				Password: password,
				Role:     auth.UserRole(role),
			}
			if fields := validator.Validate(req); fields != nil {
				return fmt.Errorf("invalid input: %s", formatFields(fields))
			}

			return withApp(cmd, cfg, log, func(a *app.App) error {
				u, err := a.Auth.CreateUser(cmd.Context(), req)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (id %d)\n", u.Role, u.Email, u.ID)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleAdmin), "admin, manager or teacher")
	cmd.Flags().StringVar(&password, "password", "", "password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	return cmd
}

func formatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+fields[k])
	}
	return strings.Join(parts, ", ")
}
