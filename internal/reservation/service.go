package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/sharebite/internal/auth"
	"github.com/example/sharebite/internal/food"
	"github.com/example/sharebite/internal/geo"
)

// PickupRadiusMeters is how close a recipient must be to the geocoded pickup
// point to confirm a pickup.
const PickupRadiusMeters = 500

var (
	// ErrForbidden: the actor is not the recorded reserver (or the item is
	// not reserved at all).
	ErrForbidden = errors.New("cannot confirm pickup for this item")
	// ErrValidation: malformed input, e.g. coordinates off the globe.
	ErrValidation = errors.New("invalid input")
)

// OutOfRangeError reports a pickup attempt from too far away, carrying the
// measured distance so clients can show how far off the recipient is.
type OutOfRangeError struct {
	DistanceMeters float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("must be within %d meters of the pickup location (actual %.1f m)", PickupRadiusMeters, e.DistanceMeters)
}

type ItemStore interface {
	Create(ctx context.Context, i food.Item) (food.Item, error)
	GetByID(ctx context.Context, id int64) (food.Item, error)
	ListByDonor(ctx context.Context, donorID string) ([]food.Item, error)
	AvailableFeed(ctx context.Context, recipientID string, now time.Time) ([]food.Item, error)
	Reserve(ctx context.Context, id int64, recipientID string, now time.Time) (food.Item, error)
	MarkPickedUp(ctx context.Context, id int64, recipientID string) (food.Item, error)
	ReleaseExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

type UserDirectory interface {
	GetUser(ctx context.Context, id string) (auth.User, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type Geocoder interface {
	Resolve(ctx context.Context, address string) geo.Point
}

type Notifier interface {
	Create(ctx context.Context, message, forRole string) error
}

type SubscriberList interface {
	Emails(ctx context.Context) ([]string, error)
}

type ImageUploader interface {
	Configured() bool
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// Service owns the food item lifecycle: donation, the
// available→reserved→picked_up transitions, and expiry sweeps. State changes
// go through conditional updates in the store; notifications and email are
// best-effort side effects dispatched after the state change commits.
type Service struct {
	Items         ItemStore
	Users         UserDirectory
	Mail          Mailer
	Geo           Geocoder
	Notifications Notifier
	Subscribers   SubscriberList
	Images        ImageUploader

	// TTL is how long a reservation may sit unconfirmed before a sweep
	// reverts it.
	TTL time.Duration

	// Now is the clock; tests override it.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type DonateInput struct {
	DonorID       string
	Name          string
	Description   string
	Category      string
	Quantity      int
	ExpiryDate    time.Time
	PickupAddress string

	// optional photo
	Image     []byte
	ImageType string
}

// Donate creates an available item, uploading the photo first when one was
// provided. Subscribers are alerted by email and recipients get a
// notification record; neither can fail the donation.
func (s *Service) Donate(ctx context.Context, in DonateInput) (food.Item, error) {
	item := food.Item{
		DonorID:       in.DonorID,
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		Quantity:      in.Quantity,
		ExpiryDate:    in.ExpiryDate,
		PickupAddress: in.PickupAddress,
	}
	if err := item.Validate(); err != nil {
		return food.Item{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if len(in.Image) > 0 && s.Images != nil && s.Images.Configured() {
		url, err := s.Images.Upload(ctx, in.Image, in.ImageType)
		if err != nil {
			return food.Item{}, fmt.Errorf("image upload: %w", err)
		}
		item.ImageURL = url
	}

	created, err := s.Items.Create(ctx, item)
	if err != nil {
		return food.Item{}, err
	}

	msg := fmt.Sprintf("New donation posted: %s (%s).", created.Name, created.Category)
	if err := s.Notifications.Create(ctx, msg, "recipient"); err != nil {
		log.Printf("reservation: notification for item %d failed: %v", created.ID, err)
	}
	s.alertSubscribers(ctx, created)

	return created, nil
}

// Reserve transitions an available item to reserved for recipientID. The
// store's conditional update resolves concurrent attempts to exactly one
// winner; losers get food.ErrConflict, missing items db.ErrNotFound.
func (s *Service) Reserve(ctx context.Context, itemID int64, recipientID string) (food.Item, error) {
	item, err := s.Items.Reserve(ctx, itemID, recipientID, s.now())
	if err != nil {
		return food.Item{}, err
	}

	log.Printf("reservation: item %d (%s) reserved by %s", item.ID, item.Name, recipientID)
	s.sendReservationEmails(ctx, item, recipientID)
	return item, nil
}

// ConfirmPickup completes a reservation after verifying the actor and their
// proximity to the pickup address. The geocoding lookup fails soft to a
// fallback coordinate; the distance check does not.
func (s *Service) ConfirmPickup(ctx context.Context, itemID int64, recipientID string, lat, lon float64) (food.Item, float64, error) {
	loc := geo.Point{Lat: lat, Lon: lon}
	if !loc.Valid() {
		return food.Item{}, 0, fmt.Errorf("%w: coordinates out of range", ErrValidation)
	}

	item, err := s.Items.GetByID(ctx, itemID)
	if err != nil {
		return food.Item{}, 0, err
	}
	res := item.Reservation
	if res == nil || res.PickedUp || res.RecipientID != recipientID {
		return food.Item{}, 0, ErrForbidden
	}

	pickup := s.Geo.Resolve(ctx, item.PickupAddress)
	distance := geo.DistanceMeters(pickup, loc)
	log.Printf("reservation: item %d pickup distance %.1f m", item.ID, distance)

	if distance > PickupRadiusMeters {
		return food.Item{}, 0, &OutOfRangeError{DistanceMeters: distance}
	}

	item, err = s.Items.MarkPickedUp(ctx, itemID, recipientID)
	if err != nil {
		// A sweep can release the reservation between our read and this
		// write; the actor is then no longer the recorded reserver.
		if errors.Is(err, food.ErrConflict) {
			return food.Item{}, 0, ErrForbidden
		}
		return food.Item{}, 0, err
	}

	log.Printf("reservation: item %d (%s) picked up by %s", item.ID, item.Name, recipientID)
	s.sendPickupEmails(ctx, item, recipientID, distance)
	return item, distance, nil
}

// SweepExpired reverts reservations older than TTL back to available in one
// bulk conditional update and reports how many it reclaimed. Safe to run at
// any time; with nothing to reclaim it is a no-op.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.TTL)
	n, err := s.Items.ReleaseExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("reservation: released %d expired reservations", n)
	}
	return n, nil
}

func (s *Service) GetItem(ctx context.Context, id int64) (food.Item, error) {
	return s.Items.GetByID(ctx, id)
}

func (s *Service) DonorItems(ctx context.Context, donorID string) ([]food.Item, error) {
	return s.Items.ListByDonor(ctx, donorID)
}

func (s *Service) AvailableFeed(ctx context.Context, recipientID string) ([]food.Item, error) {
	return s.Items.AvailableFeed(ctx, recipientID, s.now())
}
