package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkral/tempmail/internal/credential"
	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/provider"
)

// opTimeout bounds user-initiated provider calls.
const opTimeout = 10 * time.Second

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// addressCreatedMsg reports the outcome of a create-address request.
type addressCreatedMsg struct {
	address string
	err     error
}

// addressDeletedMsg reports the outcome of an address deletion.
type addressDeletedMsg struct {
	address string
	err     error
}

// messageFetchedMsg carries a fetched full message to the UI.
type messageFetchedMsg struct {
	address string
	message model.Message
}

// createAddress asks a provider for a new address, stores its token in
// the keyring, and registers it with the engine.
func (m Model) createAddress(providerKey, preferredDomain string) tea.Cmd {
	registry := m.registry
	engine := m.engine
	cfg := m.cfg
	return func() tea.Msg {
		p, err := registry.Provider(providerKey)
		if err != nil {
			return addressCreatedMsg{err: err}
		}

		if preferredDomain == "" {
			preferredDomain = cfg.Provider.PreferredDomains[providerKey]
		}

		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		identity, err := p.CreateAddress(ctx, preferredDomain)
		if err != nil {
			return addressCreatedMsg{err: err}
		}

		if err := credential.Set(credential.TokenKey(identity.Address), identity.Token); err != nil {
			return addressCreatedMsg{err: fmt.Errorf("storing token: %w", err)}
		}

		now := time.Now()
		addr := model.Address{
			Address:       identity.Address,
			Token:         identity.Token,
			Provider:      providerKey,
			CreatedAt:     now,
			LastUpdatedAt: now,
		}
		if err := engine.AddAddress(ctx, addr); err != nil {
			return addressCreatedMsg{err: err}
		}

		return addressCreatedMsg{address: identity.Address}
	}
}

// deleteAddress removes an address, its cached messages, and its token.
func (m Model) deleteAddress(address string) tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		// Token removal is best-effort; the address goes away regardless.
		_ = credential.Delete(credential.TokenKey(address))

		if err := engine.DeleteAddress(ctx, address); err != nil {
			return addressDeletedMsg{address: address, err: err}
		}
		return addressDeletedMsg{address: address}
	}
}

// fetchMessage retrieves a message's full content. Cached full content
// is served directly; otherwise the provider is asked and the result is
// merged back into the cache. Fetch failures surface as a placeholder
// message rather than an error, and placeholders are never cached.
func (m Model) fetchMessage(address, id string) tea.Cmd {
	engine := m.engine
	registry := m.registry
	return func() tea.Msg {
		for _, cached := range engine.Messages(address) {
			if cached.ID == id && cached.FetchedFullContent {
				return messageFetchedMsg{address: address, message: cached}
			}
		}

		addr, ok := engine.Address(address)
		if !ok {
			return messageFetchedMsg{
				address: address,
				message: provider.FailureMessage(id, fmt.Errorf("address %s is not tracked", address)),
			}
		}

		p, err := registry.Provider(addr.Provider)
		if err != nil {
			return messageFetchedMsg{
				address: address,
				message: provider.FailureMessage(id, err),
			}
		}

		token, err := credential.Get(credential.TokenKey(address))
		if err != nil {
			return messageFetchedMsg{
				address: address,
				message: provider.FailureMessage(id, err),
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		full := p.FetchMessage(ctx, token, id)
		if full.FetchedFullContent {
			_ = engine.MergeFetch(ctx, address, id, full)
		}

		return messageFetchedMsg{address: address, message: full}
	}
}

// fetchUnreadCount queries the store for unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		notifications, err := s.GetUnreadNotifications(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(notifications)}
	}
}
