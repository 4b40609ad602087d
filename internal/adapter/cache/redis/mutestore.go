package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielBingham/communities-sub006/internal/port"
)

// MuteStore keeps per-user mute flags in redis so preference changes take
// effect across every dispatcher instance at once.
type MuteStore struct {
	client *redis.Client
}

func NewMuteStore(client *redis.Client) *MuteStore {
	return &MuteStore{client: client}
}

func muteKey(userID, key string) string {
	return "notifications:mute:" + userID + ":" + key
}

func (s *MuteStore) IsMuted(ctx context.Context, userID, key string) (bool, error) {
	n, err := s.client.Exists(ctx, muteKey(userID, key)).Result()
	if err != nil {
		return false, fmt.Errorf("mute lookup for %s: %w", userID, err)
	}
	return n > 0, nil
}

// Mute silences one notification family for userID. A zero ttl mutes until
// explicitly unmuted.
func (s *MuteStore) Mute(ctx context.Context, userID, key string, ttl time.Duration) error {
	if err := s.client.Set(ctx, muteKey(userID, key), "1", ttl).Err(); err != nil {
		return fmt.Errorf("mute %s for %s: %w", key, userID, err)
	}
	return nil
}

func (s *MuteStore) Unmute(ctx context.Context, userID, key string) error {
	if err := s.client.Del(ctx, muteKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("unmute %s for %s: %w", key, userID, err)
	}
	return nil
}

var _ port.MuteStore = (*MuteStore)(nil)
