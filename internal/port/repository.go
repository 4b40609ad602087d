package port

import (
	"context"
	"errors"

	"github.com/danielBingham/communities-sub006/internal/domain"
)

// ErrNotFound is returned by repositories when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// NotificationStore persists in-app feed entries.
type NotificationStore interface {
	Save(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// RecipientRepository resolves user ids to notification recipients with
// their channel preferences and registered devices.
type RecipientRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Recipient, error)
}
