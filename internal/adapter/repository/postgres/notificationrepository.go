package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danielBingham/communities-sub006/internal/domain"
	"github.com/danielBingham/communities-sub006/internal/port"
)

// NotificationRepository persists the in-app notification feed.
type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: pool}
}

func (r *NotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO notifications (id, recipient_id, text, path, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.RecipientID, n.Text, n.Path, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("save notification %s: %w", n.ID, err)
	}
	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]domain.Notification, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, recipient_id, text, path, created_at, read_at
		 FROM notifications
		 WHERE recipient_id = $1
		 ORDER BY created_at DESC
		 OFFSET $2 LIMIT $3`,
		recipientID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications for %s: %w", recipientID, err)
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Text, &n.Path, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, NOW()) WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

// Compile-time interface check.
var _ port.NotificationStore = (*NotificationRepository)(nil)
