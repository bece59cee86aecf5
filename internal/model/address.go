package model

import "time"

// Address is a disposable mailbox tracked by the application.
type Address struct {
	// Address is the full email address. It is globally unique for the
	// provider session and immutable once created.
	Address string `json:"address"`

	// Token is the opaque credential the provider issued at creation.
	// Its encoding is provider-specific (some providers pack several
	// sub-tokens into it) and only the owning adapter interprets it.
	Token string `json:"token"`

	// Provider is the registry key of the adapter that owns this address.
	Provider string `json:"provider"`

	// CreatedAt is when the address was created; expiry is estimated
	// from this plus the provider's expiration constant.
	CreatedAt time.Time `json:"created_at"`

	// LastUpdatedAt is the last time new messages were observed for this
	// address, not merely the last poll attempt.
	LastUpdatedAt time.Time `json:"last_updated_at"`
}
