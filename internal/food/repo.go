package food

import (
	"context"
	"time"

	"github.com/example/sharebite/internal/db"
)

const itemCols = `id,donor_id,name,description,category,quantity,expiry_date,pickup_address,image_url,reserved_by,reserved_at,pickup_confirmed,created_at,updated_at`

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) Create(ctx context.Context, i Item) (Item, error) {
	row := r.db.QueryRow(ctx, `
INSERT INTO food_items(donor_id,name,description,category,quantity,expiry_date,pickup_address,image_url,status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'available')
RETURNING `+itemCols,
		i.DonorID, i.Name, i.Description, i.Category, i.Quantity, i.ExpiryDate, i.PickupAddress, i.ImageURL,
	)
	return scanItem(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (Item, error) {
	return scanItem(r.db.QueryRow(ctx, `SELECT `+itemCols+` FROM food_items WHERE id=$1`, id))
}

func (r *Repo) ListByDonor(ctx context.Context, donorID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+itemCols+`
FROM food_items
WHERE donor_id=$1
ORDER BY created_at DESC`, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// AvailableFeed lists items a recipient can act on: everything available,
// plus (when recipientID is set) the recipient's own reservations. Items past
// their expiry date are never offered.
func (r *Repo) AvailableFeed(ctx context.Context, recipientID string, now time.Time) ([]Item, error) {
	var (
		rows db.Rows
		err  error
	)
	if recipientID != "" {
		rows, err = r.db.Query(ctx, `
SELECT `+itemCols+`
FROM food_items
WHERE expiry_date >= $2
  AND (status='available' OR (status='reserved' AND reserved_by=$1))
ORDER BY created_at DESC`, recipientID, now)
	} else {
		rows, err = r.db.Query(ctx, `
SELECT `+itemCols+`
FROM food_items
WHERE expiry_date >= $1 AND status='available'
ORDER BY created_at DESC`, now)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Reserve flips an available item to reserved in one conditional update.
// Exactly one of two concurrent callers can win; the loser sees ErrConflict.
// Items past their expiry date are not reservable.
func (r *Repo) Reserve(ctx context.Context, id int64, recipientID string, now time.Time) (Item, error) {
	i, err := scanItem(r.db.QueryRow(ctx, `
UPDATE food_items
SET status='reserved', reserved_by=$2, reserved_at=$3, updated_at=now()
WHERE id=$1 AND status='available' AND expiry_date > $3
RETURNING `+itemCols, id, recipientID, now))
	if db.IsNotFound(err) {
		return Item{}, r.missingOrConflict(ctx, id)
	}
	return i, err
}

// MarkPickedUp completes a reservation. The reserved_by guard makes the
// update lose cleanly if the reservation was released or taken over between
// the caller's read and this write.
func (r *Repo) MarkPickedUp(ctx context.Context, id int64, recipientID string) (Item, error) {
	i, err := scanItem(r.db.QueryRow(ctx, `
UPDATE food_items
SET status='picked_up', pickup_confirmed=true, updated_at=now()
WHERE id=$1 AND status='reserved' AND reserved_by=$2
RETURNING `+itemCols, id, recipientID))
	if db.IsNotFound(err) {
		return Item{}, r.missingOrConflict(ctx, id)
	}
	return i, err
}

// ReleaseExpired reverts reservations older than olderThan in a single bulk
// update. The pickup_confirmed guard keeps a pickup confirmed in the same
// instant from being reverted.
func (r *Repo) ReleaseExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	return r.db.Exec(ctx, `
UPDATE food_items
SET status='available', reserved_by=NULL, reserved_at=NULL, updated_at=now()
WHERE status='reserved' AND reserved_at <= $1 AND NOT pickup_confirmed`, olderThan)
}

func (r *Repo) missingOrConflict(ctx context.Context, id int64) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM food_items WHERE id=$1)`, id).Scan(&exists); err != nil {
		return db.WrapNotFound(err)
	}
	if !exists {
		return db.ErrNotFound
	}
	return ErrConflict
}

func scanItem(row db.Row) (Item, error) {
	var i Item
	var reservedBy *string
	var reservedAt *time.Time
	var pickedUp bool
	err := row.Scan(
		&i.ID, &i.DonorID, &i.Name, &i.Description, &i.Category, &i.Quantity,
		&i.ExpiryDate, &i.PickupAddress, &i.ImageURL,
		&reservedBy, &reservedAt, &pickedUp,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return Item{}, db.WrapNotFound(err)
	}
	if reservedBy != nil {
		res := Reservation{RecipientID: *reservedBy, PickedUp: pickedUp}
		if reservedAt != nil {
			res.At = *reservedAt
		}
		i.Reservation = &res
	}
	return i, nil
}

func collect(rows db.Rows) ([]Item, error) {
	var out []Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}
