package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/sharebite/internal/auth"
	"github.com/example/sharebite/internal/config"
	"github.com/example/sharebite/internal/db"
	"github.com/example/sharebite/internal/migrate"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var name, email, phone, role, password string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a user (donor, recipient or admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			store := auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey)
			u, err := store.CreateUser(ctx, name, email, phone, role, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created user %q id=%s role=%s\n", u.Name, u.ID, u.Role)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "display name")
	c.Flags().StringVar(&email, "email", "", "email address")
	c.Flags().StringVar(&phone, "phone", "", "phone number")
	c.Flags().StringVar(&role, "role", "donor", "role: donor, recipient or admin")
	c.Flags().StringVar(&password, "password", "", "password")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
