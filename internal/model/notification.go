package model

import "time"

// Notification represents a new-mail alert surfaced to the user.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Address is the mailbox that received new mail.
	Address string `json:"address"`

	// Provider is the registry key of the address's adapter.
	Provider string `json:"provider"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
