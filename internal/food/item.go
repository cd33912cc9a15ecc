package food

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusPickedUp  Status = "picked_up"
)

// ErrConflict is returned when a conditional update loses: reserving an item
// that is no longer available, or confirming a pickup whose reservation was
// released underneath the caller.
var ErrConflict = errors.New("already reserved or picked up")

// Reservation carries the fields that only exist once an item has been
// reserved. reservedBy/reservedAt stay populated after pickup for audit.
type Reservation struct {
	RecipientID string
	At          time.Time
	PickedUp    bool
}

type Item struct {
	ID            int64
	DonorID       string
	Name          string
	Description   string
	Category      string
	Quantity      int
	ExpiryDate    time.Time
	PickupAddress string
	ImageURL      string

	// nil while the item is available, so an available item cannot carry a
	// reserver and a reserved item cannot lack one.
	Reservation *Reservation

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *Item) Status() Status {
	switch {
	case i.Reservation == nil:
		return StatusAvailable
	case i.Reservation.PickedUp:
		return StatusPickedUp
	default:
		return StatusReserved
	}
}

func (i *Item) Expired(now time.Time) bool {
	return i.ExpiryDate.Before(now)
}

func (i Item) Validate() error {
	if i.DonorID == "" {
		return fmt.Errorf("donor id required")
	}
	if i.Name == "" {
		return fmt.Errorf("name required")
	}
	if i.Category == "" {
		return fmt.Errorf("category required")
	}
	if i.Quantity < 1 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	if i.ExpiryDate.IsZero() {
		return fmt.Errorf("expiry date required")
	}
	if i.PickupAddress == "" {
		return fmt.Errorf("pickup address required")
	}
	return nil
}
