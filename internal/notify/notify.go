package notify

import (
	"context"
	"time"

	"github.com/example/sharebite/internal/db"
)

// Notification is a broadcast message for one audience role. Read state is
// tracked per user in a join table.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	ForRole   string    `json:"forRole"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) Create(ctx context.Context, message, forRole string) error {
	if forRole == "" {
		forRole = "recipient"
	}
	_, err := r.db.Exec(ctx, `INSERT INTO notifications(message, for_role) VALUES ($1,$2)`, message, forRole)
	return err
}

// ListForUser returns recipient notifications, newest first, with the
// caller's read flag joined in.
func (r *Repo) ListForUser(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := r.db.Query(ctx, `
SELECT n.id, n.message, n.for_role, n.created_at, nr.user_id IS NOT NULL
FROM notifications n
LEFT JOIN notification_reads nr ON nr.notification_id = n.id AND nr.user_id = $1
WHERE n.for_role = 'recipient'
ORDER BY n.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.ForRole, &n.CreatedAt, &n.IsRead); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkAllRead marks every notification read for one user in a single
// statement and reports how many were newly marked.
func (r *Repo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return r.db.Exec(ctx, `
INSERT INTO notification_reads(notification_id, user_id)
SELECT id, $1 FROM notifications
ON CONFLICT DO NOTHING`, userID)
}
