package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceKeyPrefix = "presence:"

// Presence tracks which users currently hold a live connection. With a redis
// client it is shared across instances; without one it falls back to an
// in-process map, which is enough for tests and single-node runs.
type Presence struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.RWMutex
	local map[string]time.Time
}

func NewPresence(client *redis.Client, ttl time.Duration) *Presence {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Presence{
		client: client,
		ttl:    ttl,
		local:  make(map[string]time.Time),
	}
}

// SetOnline marks userID online until the TTL lapses or SetOffline is called.
func (p *Presence) SetOnline(ctx context.Context, userID string) {
	now := time.Now().UTC()
	if p.client != nil {
		_ = p.client.Set(ctx, presenceKeyPrefix+userID, now.Format(time.RFC3339), p.ttl).Err()
		return
	}
	p.mu.Lock()
	p.local[userID] = now
	p.mu.Unlock()
}

func (p *Presence) SetOffline(ctx context.Context, userID string) {
	if p.client != nil {
		_ = p.client.Del(ctx, presenceKeyPrefix+userID).Err()
		return
	}
	p.mu.Lock()
	delete(p.local, userID)
	p.mu.Unlock()
}

// IsOnline reports whether userID has a live connection somewhere.
func (p *Presence) IsOnline(ctx context.Context, userID string) bool {
	if p.client != nil {
		n, err := p.client.Exists(ctx, presenceKeyPrefix+userID).Result()
		return err == nil && n > 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	seen, ok := p.local[userID]
	return ok && time.Since(seen) < p.ttl
}
