package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/sharebite/internal/config"
	"github.com/example/sharebite/internal/db"
	"github.com/example/sharebite/internal/food"
	"github.com/example/sharebite/internal/migrate"
	"github.com/example/sharebite/internal/reservation"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Release expired reservations once and exit",
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

			svc := &reservation.Service{Items: food.NewRepo(d), TTL: cfg.ReservationTTL}
			n, err := svc.SweepExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "released %d expired reservations\n", n)
			return nil
		},
	}
}
