package reservation

import (
	"context"
	"fmt"
	"log"

	"github.com/example/sharebite/internal/food"
)

// Email side effects. All of them are best-effort: the state change is the
// operation's durable contract, so failures here are logged and swallowed.

func (s *Service) sendReservationEmails(ctx context.Context, item food.Item, recipientID string) {
	donor, recipient := s.lookupPair(ctx, item.DonorID, recipientID)

	if recipient.Email != "" {
		s.send(ctx, recipient.Email, "Food Reservation Confirmed",
			fmt.Sprintf(`<p>Hi %s,</p>
<p>You have successfully reserved <b>%s</b> from %s.</p>
<p>Please pick it up before <b>%s</b>.</p>
<p>Pickup location: %s</p>`,
				nameOr(recipient.Name, "Recipient"), item.Name, nameOr(donor.Name, "a donor"),
				item.ExpiryDate.Format("Jan 2, 2006 3:04 PM"), item.PickupAddress))
	}
	if donor.Email != "" {
		s.send(ctx, donor.Email, "Your Donation Has Been Reserved",
			fmt.Sprintf(`<p>Hi %s,</p>
<p>Your donation <b>%s</b> has been reserved by %s.</p>
<p>They will arrive for pickup soon.</p>`,
				nameOr(donor.Name, "Donor"), item.Name, nameOr(recipient.Name, "a recipient")))
	}
}

func (s *Service) sendPickupEmails(ctx context.Context, item food.Item, recipientID string, distance float64) {
	donor, recipient := s.lookupPair(ctx, item.DonorID, recipientID)

	if donor.Email != "" {
		s.send(ctx, donor.Email, "Pickup Completed",
			fmt.Sprintf(`<p>Hi %s,</p>
<p>Your food item <b>%s</b> has been successfully picked up.</p>
<p>Thank you for your contribution to ShareBite!</p>`,
				nameOr(donor.Name, "Donor"), item.Name))
	}
	if recipient.Email != "" {
		s.send(ctx, recipient.Email, "Pickup Verified",
			fmt.Sprintf(`<p>Hi %s,</p>
<p>Your pickup of <b>%s</b> has been verified successfully (%.1fm from location).</p>
<p>Enjoy your meal and thank you for helping reduce food waste!</p>`,
				nameOr(recipient.Name, "Recipient"), item.Name, distance))
	}
}

func (s *Service) alertSubscribers(ctx context.Context, item food.Item) {
	emails, err := s.Subscribers.Emails(ctx)
	if err != nil {
		log.Printf("reservation: subscriber list lookup failed: %v", err)
		return
	}
	if len(emails) == 0 {
		return
	}

	body := fmt.Sprintf(`<p>Hi there,</p>
<p>A new food donation has just been posted on <b>ShareBite</b>.</p>
<p><b>%s</b> &mdash; %s</p>
<p><b>Pickup location:</b> %s</p>
<p><b>Expires:</b> %s</p>
<p>Log in to your ShareBite account to reserve it before it's gone.</p>
<p style="font-size:12px;color:#666;">
  You received this email because you're subscribed to ShareBite donation alerts.
</p>`,
		item.Name, item.Category, item.PickupAddress, item.ExpiryDate.Format("Jan 2, 2006 3:04 PM"))

	for _, to := range emails {
		s.send(ctx, to, "New Food Donation Available", body)
	}
	log.Printf("reservation: alerted %d subscribers about item %d", len(emails), item.ID)
}

func (s *Service) send(ctx context.Context, to, subject, html string) {
	if err := s.Mail.Send(ctx, to, subject, html); err != nil {
		log.Printf("reservation: email to %s failed: %v", to, err)
	}
}

// lookupPair fetches the donor and recipient records for email copy. Missing
// users just leave the corresponding email blank.
func (s *Service) lookupPair(ctx context.Context, donorID, recipientID string) (donor, recipient userInfo) {
	if u, err := s.Users.GetUser(ctx, donorID); err == nil {
		donor = userInfo{Name: u.Name, Email: u.Email}
	}
	if u, err := s.Users.GetUser(ctx, recipientID); err == nil {
		recipient = userInfo{Name: u.Name, Email: u.Email}
	}
	return donor, recipient
}

type userInfo struct {
	Name  string
	Email string
}

func nameOr(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
