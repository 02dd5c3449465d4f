package main

import (
	"fmt"

	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/aman-churiwal/mailing-lists/internal/repository"
	"github.com/aman-churiwal/mailing-lists/internal/service"
	"github.com/spf13/cobra"
)

func newAdminCommand(rt *runtimeState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage staff accounts",
	}

	cmd.AddCommand(newAdminCreateCommand(rt))

	return cmd
}

func newAdminCreateCommand(rt *runtimeState) *cobra.Command {
	var email, password, name, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			postgres, err := rt.openPostgres()
			if err != nil {
				return err
			}
			defer postgres.Close()

			auth := service.NewAuthService(repository.NewUserRepository(postgres), rt.cfg.Security.JWTSecret, rt.cfg.Security.JWTExpiryHours)
			user, err := auth.Register(cmd.Context(), email, password, name, role)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Login password")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", models.RoleAdmin, "Role: admin or editor")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
