// Package memory provides in-memory repository implementations for tests
// and single-node development runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/danielBingham/communities-sub006/internal/domain"
	"github.com/danielBingham/communities-sub006/internal/port"
)

type NotificationRepositoryStub struct {
	mu   sync.RWMutex
	data map[string]*domain.Notification
}

func NewNotificationRepositoryStub() *NotificationRepositoryStub {
	return &NotificationRepositoryStub{
		data: make(map[string]*domain.Notification),
	}
}

func (r *NotificationRepositoryStub) Save(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *n
	r.data[n.ID] = &stored
	return nil
}

func (r *NotificationRepositoryStub) ListByRecipient(ctx context.Context, recipientID string, offset, limit int) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []domain.Notification
	for _, n := range r.data {
		if n.RecipientID == recipientID {
			items = append(items, *n)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if offset >= len(items) {
		return []domain.Notification{}, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (r *NotificationRepositoryStub) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.data[id]
	if !ok {
		return port.ErrNotFound
	}
	if n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
	}
	return nil
}

var _ port.NotificationStore = (*NotificationRepositoryStub)(nil)
