package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/sharebite/internal/auth"
	"github.com/example/sharebite/internal/config"
	"github.com/example/sharebite/internal/db"
	"github.com/example/sharebite/internal/food"
	"github.com/example/sharebite/internal/geo"
	"github.com/example/sharebite/internal/images"
	"github.com/example/sharebite/internal/mail"
	"github.com/example/sharebite/internal/migrate"
	"github.com/example/sharebite/internal/notify"
	"github.com/example/sharebite/internal/payments"
	"github.com/example/sharebite/internal/reservation"
	"github.com/example/sharebite/internal/subs"
	"github.com/example/sharebite/internal/sweeper"
	"github.com/example/sharebite/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the API server + background expiry sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			authStore := auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey)

			svc := &reservation.Service{
				Items:         food.NewRepo(d),
				Users:         authStore,
				Mail:          mail.NewSender(cfg.SendGridAPIKey, cfg.FromEmail),
				Geo:           geo.NewGeocoder(cfg.GeocodeURL, geo.Point{Lat: cfg.GeocodeFallbackLat, Lon: cfg.GeocodeFallbackLon}),
				Notifications: notify.NewRepo(d),
				Subscribers:   subs.NewRepo(d),
				Images:        images.NewUploader(cfg.CloudinaryCloud, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret),
				TTL:           cfg.ReservationTTL,
			}

			sw := &sweeper.Sweeper{Sweep: svc, Interval: cfg.SweepInterval}
			go func() { _ = sw.Run(ctx) }()

			ws := &web.Server{
				Auth:          authStore,
				Food:          svc,
				Notifications: notify.NewRepo(d),
				Subscriptions: subs.NewRepo(d),
				Payments:      payments.New(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PaymentCurrency),
			}
			log.Printf("server: listening on %s", cfg.ListenAddr)
			return web.Start(ctx, cfg.ListenAddr, ws.Routes())
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
