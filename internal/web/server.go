package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/sharebite/internal/auth"
	"github.com/example/sharebite/internal/food"
	"github.com/example/sharebite/internal/notify"
	"github.com/example/sharebite/internal/reservation"
	"github.com/example/sharebite/internal/subs"
)

// FoodService is what the food handlers need from the lifecycle service.
type FoodService interface {
	Donate(ctx context.Context, in reservation.DonateInput) (food.Item, error)
	Reserve(ctx context.Context, itemID int64, recipientID string) (food.Item, error)
	ConfirmPickup(ctx context.Context, itemID int64, recipientID string, lat, lon float64) (food.Item, float64, error)
	SweepExpired(ctx context.Context) (int64, error)
	GetItem(ctx context.Context, id int64) (food.Item, error)
	DonorItems(ctx context.Context, donorID string) ([]food.Item, error)
	AvailableFeed(ctx context.Context, recipientID string) ([]food.Item, error)
}

type NotificationStore interface {
	ListForUser(ctx context.Context, userID string) ([]notify.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type SubscriptionStore interface {
	Get(ctx context.Context, recipientID string) (subs.Subscription, error)
	Subscribe(ctx context.Context, recipientID, email string) (subs.Subscription, error)
	Unsubscribe(ctx context.Context, recipientID string) error
}

type PaymentProvider interface {
	Configured() bool
	CreateOrder(ctx context.Context, amount string) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (json.RawMessage, error)
}

type Server struct {
	Auth          *auth.Store
	Food          FoodService
	Notifications NotificationStore
	Subscriptions SubscriptionStore
	Payments      PaymentProvider
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.With(s.Auth.RequireAuth).Get("/me", s.handleMe)
		})

		r.Route("/food", func(r chi.Router) {
			r.Get("/available", s.handleAvailableFeed)
			r.Get("/donor/{donorID}", s.handleDonorItems)
			r.Patch("/release-expired", s.handleReleaseExpired)
			r.Get("/{id}", s.handleGetItem)

			r.Group(func(r chi.Router) {
				r.Use(s.Auth.RequireAuth)
				r.Post("/", s.handleDonate)
				r.Patch("/{id}/reserve", s.handleReserve)
				r.Patch("/{id}/pickup", s.handlePickup)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(s.Auth.RequireAuth)
			r.Get("/", s.handleNotifications)
			r.Put("/mark-read", s.handleMarkRead)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(s.Auth.RequireAuth)
			r.Get("/status", s.handleSubscriptionStatus)
			r.Post("/subscribe", s.handleSubscribe)
			r.Delete("/unsubscribe", s.handleUnsubscribe)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/create-order", s.handleCreateOrder)
			r.Post("/capture-order", s.handleCaptureOrder)
		})
	})

	return r
}

func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}
