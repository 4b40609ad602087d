package memory

import (
	"context"
	"sync"

	"github.com/danielBingham/communities-sub006/internal/domain"
	"github.com/danielBingham/communities-sub006/internal/port"
)

type RecipientRepositoryStub struct {
	mu   sync.RWMutex
	data map[string]domain.Recipient
}

func NewRecipientRepositoryStub() *RecipientRepositoryStub {
	return &RecipientRepositoryStub{
		data: make(map[string]domain.Recipient),
	}
}

func (r *RecipientRepositoryStub) Put(rcpt domain.Recipient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[rcpt.ID] = rcpt
}

func (r *RecipientRepositoryStub) FindByIDs(ctx context.Context, ids []string) ([]domain.Recipient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var recipients []domain.Recipient
	for _, id := range ids {
		if rcpt, ok := r.data[id]; ok {
			recipients = append(recipients, rcpt)
		}
	}
	return recipients, nil
}

var _ port.RecipientRepository = (*RecipientRepositoryStub)(nil)
