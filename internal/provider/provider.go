package provider

import (
	"context"

	"github.com/mkral/tempmail/internal/model"
)

// Identity is the result of creating a disposable address: the address
// itself plus the opaque credential required for all later calls.
type Identity struct {
	Address string
	Token   string
}

// Provider defines the contract every temporary-mail backend must implement.
// Implementations normalize their service's wire format into model.Message
// and model.Address so nothing downstream is provider-specific.
type Provider interface {
	// Key returns the stable registry key for this provider.
	Key() string

	// Name returns the human-readable service name shown in the UI.
	Name() string

	// CreateAddress provisions a new address. preferredDomain is used
	// when non-empty and the service supports domain choice; otherwise
	// the provider picks a default or random supported domain. Failures
	// anywhere in the create/account/token handshake return an
	// *UnavailableError.
	CreateAddress(ctx context.Context, preferredDomain string) (Identity, error)

	// ListMessages returns message summaries for the address owning
	// token. An empty or absent list on the provider side yields an
	// empty slice, not an error.
	ListMessages(ctx context.Context, token string) ([]model.Message, error)

	// FetchMessage retrieves the full form of one message. It never
	// fails: transport or decode errors produce a placeholder record
	// describing the failure (see FailureMessage), so callers can render
	// the result unconditionally.
	FetchMessage(ctx context.Context, token, id string) model.Message

	// Domains returns the currently known usable domains. For providers
	// with server-assigned dynamic domains the list holds a default
	// until the first successful CreateAddress populates it; the cached
	// list is then reused for the process lifetime.
	Domains() []string

	// ExpirationSeconds is the provider-specific address lifetime,
	// used only for display and expiry estimation.
	ExpirationSeconds() int
}

// FailureMessage builds the fail-soft placeholder returned when fetching
// a message fails. The record renders like a message but carries the
// failure description, and is never marked as full content so a later
// successful fetch can still replace it in the cache.
func FailureMessage(id string, err error) model.Message {
	body := "Could not load this message."
	if err != nil {
		body = "Could not load this message: " + err.Error()
	}
	return model.Message{
		ID:      id,
		Subject: "Message unavailable",
		From:    model.UnknownSender,
		Body:    body,
		Size:    int64(len(body)),
	}
}
