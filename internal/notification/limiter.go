package notification

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// recipientLimiter keeps one token bucket per recipient so a burst of events
// cannot flood a single user across every channel at once.
type recipientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
}

func newRecipientLimiter(perMinute int) *recipientLimiter {
	return &recipientLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    max(1, perMinute/6),
	}
}

func (l *recipientLimiter) Allow(recipientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[recipientID]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[recipientID] = limiter
	}
	l.lastSeen[recipientID] = time.Now()
	return limiter.Allow()
}

// Evict drops buckets for recipients not seen within maxAge.
func (l *recipientLimiter) Evict(maxAge time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	for id, last := range l.lastSeen {
		if last.Before(cutoff) {
			delete(l.limiters, id)
			delete(l.lastSeen, id)
		}
	}
}
