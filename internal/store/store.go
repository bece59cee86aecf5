package store

import (
	"context"

	"github.com/mkral/tempmail/internal/model"
)

// Store defines the persistence interface for addresses, their cached
// messages, and notifications. Access tokens are never persisted here;
// they live in the credential store.
type Store interface {
	// === Addresses ===

	UpsertAddress(ctx context.Context, addr model.Address) error
	GetAddresses(ctx context.Context) ([]model.Address, error)
	DeleteAddress(ctx context.Context, address string) error

	// === Messages ===

	// ReplaceMessages swaps the full cached message set for an address,
	// preserving the given slice order as the discovery order.
	ReplaceMessages(ctx context.Context, address string, msgs []model.Message) error
	GetMessages(ctx context.Context, address string) ([]model.Message, error)
	GetAllMessages(ctx context.Context) (map[string][]model.Message, error)

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	Close() error
}
