package subs

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/example/sharebite/internal/db"
)

// Subscription is an opt-in for donation alert emails.
type Subscription struct {
	RecipientID string `json:"recipientId"`
	Email       string `json:"email"`
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(s string) bool { return emailRe.MatchString(s) }

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) Get(ctx context.Context, recipientID string) (Subscription, error) {
	var s Subscription
	err := r.db.QueryRow(ctx, `SELECT recipient_id, email FROM subscriptions WHERE recipient_id=$1`, recipientID).
		Scan(&s.RecipientID, &s.Email)
	if err != nil {
		return Subscription{}, db.WrapNotFound(err)
	}
	return s, nil
}

// Subscribe upserts the recipient's alert address.
func (r *Repo) Subscribe(ctx context.Context, recipientID, email string) (Subscription, error) {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return Subscription{}, fmt.Errorf("invalid email %q", email)
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO subscriptions(recipient_id, email) VALUES ($1,$2)
ON CONFLICT (recipient_id) DO UPDATE SET email=EXCLUDED.email, updated_at=now()`, recipientID, email)
	if err != nil {
		return Subscription{}, err
	}
	return Subscription{RecipientID: recipientID, Email: email}, nil
}

func (r *Repo) Unsubscribe(ctx context.Context, recipientID string) error {
	n, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE recipient_id=$1`, recipientID)
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

// Emails lists every subscriber address for alert fanout.
func (r *Repo) Emails(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT email FROM subscriptions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
