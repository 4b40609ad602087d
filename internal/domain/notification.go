package domain

import "time"

// Notification is a persisted in-app feed entry, one row per recipient.
type Notification struct {
	ID          string     `json:"id"`
	RecipientID string     `json:"recipientId"`
	Text        string     `json:"text"`
	Path        string     `json:"path"`
	CreatedAt   time.Time  `json:"createdAt"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
}

// Recipient identifies a user to notify along with the delivery surface
// their preferences allow. Channels holds channel names ("email", "web",
// "mobile"); an empty slice means the user turned everything off.
type Recipient struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	DeviceTokens []string `json:"deviceTokens"`
	Channels     []string `json:"channels"`
}

// HasChannel reports whether the recipient enabled the named channel.
func (r Recipient) HasChannel(name string) bool {
	for _, ch := range r.Channels {
		if ch == name {
			return true
		}
	}
	return false
}
