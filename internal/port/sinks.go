package port

import (
	"context"
	"time"
)

// EmailMessage is the rendered payload handed to the email transport.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

// PushMessage is the rendered payload handed to the mobile push provider.
type PushMessage struct {
	DeviceToken string `json:"deviceToken"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}

// RealtimeEvent is pushed to a recipient's live websocket connections.
type RealtimeEvent struct {
	RecipientID string `json:"recipientId"`
	Event       string `json:"event"`
	Payload     any    `json:"payload"`
}

// EmailSender delivers one rendered email. Retry and batching policy belongs
// to the implementation, not the dispatcher.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// PushSender delivers one rendered mobile push payload.
type PushSender interface {
	Send(ctx context.Context, msg PushMessage) error
}

// RealtimePublisher delivers an event to a recipient's connected clients.
// Publishing to an offline recipient is not an error.
type RealtimePublisher interface {
	Publish(ctx context.Context, ev RealtimeEvent) error
}

// MuteStore answers whether a recipient muted a notification family.
type MuteStore interface {
	IsMuted(ctx context.Context, userID, muteKey string) (bool, error)
	Mute(ctx context.Context, userID, muteKey string, ttl time.Duration) error
	Unmute(ctx context.Context, userID, muteKey string) error
}
