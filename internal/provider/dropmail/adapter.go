// Package dropmail implements the provider contract for DropMail.me, a
// GraphQL service. Sessions are addressed by a locally generated API
// token embedded in the endpoint URL; messages are queried by a separate
// session id the mutation returns. Both parts are packed into the stored
// credential as "apiToken|sessionID".
package dropmail

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/provider"
)

const (
	// Key is the registry key for this provider.
	Key = "dropmail"

	defaultBaseURL = "https://dropmail.me/api/graphql/"

	// Sessions expire after ten minutes without polling.
	expirationSeconds = 600

	tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// tokenSeparator joins the URL token and the session id into one
	// stored credential.
	tokenSeparator = "|"
)

const introduceSessionMutation = `
mutation {
  introduceSession {
    id
    expiresAt
    addresses {
      address
    }
  }
}`

const sessionMailsQuery = `
query($id: ID!){
  session(id: $id){
    mails{
      id
      fromAddr
      headerSubject
      text
      receivedAt
    }
  }
}`

// Adapter implements provider.Provider for DropMail.me.
type Adapter struct {
	client *Client
}

// New creates a DropMail adapter against the public API.
func New() *Adapter {
	return NewWithBaseURL(defaultBaseURL)
}

// NewWithBaseURL creates an adapter against a specific GraphQL root URL.
func NewWithBaseURL(baseURL string) *Adapter {
	return &Adapter{client: NewClient(baseURL)}
}

// Key returns the registry key for DropMail.
func (a *Adapter) Key() string { return Key }

// Name returns the human-readable service name.
func (a *Adapter) Name() string { return "DropMail.me" }

// CreateAddress introduces a new session. The service assigns both the
// address and its domain, so preferredDomain is not transmitted.
func (a *Adapter) CreateAddress(ctx context.Context, preferredDomain string) (provider.Identity, error) {
	apiToken := randString(12)

	var data introduceSessionData
	if err := a.client.Do(ctx, apiToken, introduceSessionMutation, nil, &data); err != nil {
		return provider.Identity{}, &provider.UnavailableError{
			Provider: Key, Op: "introduce session", Err: err,
		}
	}

	sess := data.IntroduceSession
	if sess.ID == "" || len(sess.Addresses) == 0 || sess.Addresses[0].Address == "" {
		return provider.Identity{}, &provider.UnavailableError{
			Provider: Key, Op: "introduce session",
			Err: fmt.Errorf("response missing session id or address"),
		}
	}

	return provider.Identity{
		Address: sess.Addresses[0].Address,
		Token:   apiToken + tokenSeparator + sess.ID,
	}, nil
}

// ListMessages queries the session's mails. An expired (null) session
// yields an empty list, not an error.
func (a *Adapter) ListMessages(ctx context.Context, token string) ([]model.Message, error) {
	apiToken, sessionID, err := splitToken(token)
	if err != nil {
		return nil, &provider.UnavailableError{Provider: Key, Op: "list messages", Err: err}
	}

	var data sessionData
	err = a.client.Do(ctx, apiToken, sessionMailsQuery,
		map[string]interface{}{"id": sessionID}, &data)
	if err != nil {
		return nil, &provider.UnavailableError{Provider: Key, Op: "list messages", Err: err}
	}

	if data.Session == nil {
		return []model.Message{}, nil
	}

	msgs := make([]model.Message, 0, len(data.Session.Mails))
	for _, m := range data.Session.Mails {
		msgs = append(msgs, model.Message{
			ID:      m.ID,
			Subject: orDefault(m.HeaderSubject, model.NoSubject),
			From:    orDefault(m.FromAddr, model.UnknownSender),
			Date:    m.ReceivedAt,
		})
	}
	return msgs, nil
}

// FetchMessage retrieves the full message, substituting a fail-soft
// placeholder on any failure. The API exposes no per-mail endpoint, so
// the session's mails are re-queried and matched by id.
func (a *Adapter) FetchMessage(ctx context.Context, token, id string) model.Message {
	msg, err := a.fetchMessage(ctx, token, id)
	if err != nil {
		return provider.FailureMessage(id, err)
	}
	return msg
}

func (a *Adapter) fetchMessage(ctx context.Context, token, id string) (model.Message, error) {
	apiToken, sessionID, err := splitToken(token)
	if err != nil {
		return model.Message{}, err
	}

	var data sessionData
	err = a.client.Do(ctx, apiToken, sessionMailsQuery,
		map[string]interface{}{"id": sessionID}, &data)
	if err != nil {
		return model.Message{}, err
	}
	if data.Session == nil {
		return model.Message{}, fmt.Errorf("session expired")
	}

	for _, m := range data.Session.Mails {
		if m.ID != id {
			continue
		}
		return model.Message{
			ID:                 m.ID,
			Subject:            orDefault(m.HeaderSubject, model.NoSubject),
			From:               orDefault(m.FromAddr, model.UnknownSender),
			Date:               m.ReceivedAt,
			Body:               m.Text,
			Size:               int64(len(m.Text)),
			FetchedFullContent: true,
		}, nil
	}

	return model.Message{}, fmt.Errorf("message %s not found in session", id)
}

// Domains returns the service's advertised domain. Actual addresses use
// rotating domains the session mutation assigns.
func (a *Adapter) Domains() []string {
	return []string{"dropmail.me"}
}

// ExpirationSeconds returns the session lifetime for display purposes.
func (a *Adapter) ExpirationSeconds() int { return expirationSeconds }

// splitToken unpacks the stored "apiToken|sessionID" credential.
func splitToken(token string) (apiToken, sessionID string, err error) {
	parts := strings.SplitN(token, tokenSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed dropmail token")
	}
	return parts[0], parts[1], nil
}

func randString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = tokenAlphabet[rand.IntN(len(tokenAlphabet))]
	}
	return string(b)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
