package food

import (
	"testing"
	"time"
)

func TestItemStatus(t *testing.T) {
	now := time.Now()

	avail := Item{}
	if got := avail.Status(); got != StatusAvailable {
		t.Errorf("Status() = %q, want available", got)
	}

	reserved := Item{Reservation: &Reservation{RecipientID: "r1", At: now}}
	if got := reserved.Status(); got != StatusReserved {
		t.Errorf("Status() = %q, want reserved", got)
	}

	picked := Item{Reservation: &Reservation{RecipientID: "r1", At: now, PickedUp: true}}
	if got := picked.Status(); got != StatusPickedUp {
		t.Errorf("Status() = %q, want picked_up", got)
	}
	// audit trail survives pickup
	if picked.Reservation.RecipientID != "r1" || picked.Reservation.At.IsZero() {
		t.Error("pickup lost reservation audit fields")
	}
}

func TestItemExpired(t *testing.T) {
	now := time.Now()
	fresh := Item{ExpiryDate: now.Add(time.Hour)}
	if fresh.Expired(now) {
		t.Error("item expiring in an hour reported expired")
	}
	stale := Item{ExpiryDate: now.Add(-time.Minute)}
	if !stale.Expired(now) {
		t.Error("item past expiry not reported expired")
	}
}

func TestItemValidate(t *testing.T) {
	valid := Item{
		DonorID:       "d1",
		Name:          "Bread",
		Category:      "Bakery",
		Quantity:      2,
		ExpiryDate:    time.Now().Add(24 * time.Hour),
		PickupAddress: "1 King St W, Kitchener",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Item)
	}{
		{"missing donor", func(i *Item) { i.DonorID = "" }},
		{"missing name", func(i *Item) { i.Name = "" }},
		{"missing category", func(i *Item) { i.Category = "" }},
		{"zero quantity", func(i *Item) { i.Quantity = 0 }},
		{"negative quantity", func(i *Item) { i.Quantity = -1 }},
		{"missing expiry", func(i *Item) { i.ExpiryDate = time.Time{} }},
		{"missing address", func(i *Item) { i.PickupAddress = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := valid
			tt.mutate(&i)
			if err := i.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
