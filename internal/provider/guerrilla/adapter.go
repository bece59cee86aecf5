package guerrilla

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/provider"
)

const (
	// Key is the registry key for this provider.
	Key = "guerrillamail"

	defaultBaseURL = "https://api.guerrillamail.com/ajax.php"

	// Addresses live for an hour of inactivity.
	expirationSeconds = 3600
)

// domains the service hands out. The create endpoint assigns the domain
// server-side, so these are informational only.
var domains = []string{
	"grr.la",
	"sharklasers.com",
	"guerrillamail.net",
	"guerrillamail.com",
}

// Adapter implements provider.Provider for Guerrilla Mail.
//
// The service aggressively caches its ajax endpoint, so create requests
// carry a millisecond-timestamp salt parameter that is incremented per
// request. Some frontends reject the salted form; a failed create is
// retried once without it.
type Adapter struct {
	client *Client
	salt   atomic.Int64
}

// New creates a Guerrilla Mail adapter against the public API.
func New() *Adapter {
	return NewWithBaseURL(defaultBaseURL)
}

// NewWithBaseURL creates an adapter against a specific endpoint URL.
func NewWithBaseURL(baseURL string) *Adapter {
	a := &Adapter{client: NewClient(baseURL)}
	a.salt.Store(time.Now().UnixMilli())
	return a
}

// Key returns the registry key for Guerrilla Mail.
func (a *Adapter) Key() string { return Key }

// Name returns the human-readable service name.
func (a *Adapter) Name() string { return "Guerrilla Mail" }

// CreateAddress requests a new address from the service. The domain is
// assigned server-side; preferredDomain is accepted for interface
// symmetry but not transmitted.
func (a *Adapter) CreateAddress(ctx context.Context, preferredDomain string) (provider.Identity, error) {
	params := url.Values{}
	params.Set("f", "get_email_address")
	params.Set("t", strconv.FormatInt(a.salt.Add(1), 10))

	var resp createResponse
	err := a.client.Get(ctx, params, &resp)
	if err != nil || resp.EmailAddr == "" || resp.SidToken == "" {
		// Fallback: retry without the salt parameter.
		params.Del("t")
		resp = createResponse{}
		if err = a.client.Get(ctx, params, &resp); err != nil {
			return provider.Identity{}, &provider.UnavailableError{
				Provider: Key, Op: "create address", Err: err,
			}
		}
	}

	if resp.EmailAddr == "" || resp.SidToken == "" {
		return provider.Identity{}, &provider.UnavailableError{
			Provider: Key, Op: "create address",
			Err: fmt.Errorf("response missing email_addr or sid_token"),
		}
	}

	return provider.Identity{Address: resp.EmailAddr, Token: resp.SidToken}, nil
}

// ListMessages returns message summaries for the session token.
func (a *Adapter) ListMessages(ctx context.Context, token string) ([]model.Message, error) {
	params := url.Values{}
	params.Set("f", "get_email_list")
	params.Set("sid_token", token)
	params.Set("offset", "0")

	var resp listResponse
	if err := a.client.Get(ctx, params, &resp); err != nil {
		return nil, &provider.UnavailableError{
			Provider: Key, Op: "list messages", Err: err,
		}
	}

	msgs := make([]model.Message, 0, len(resp.List))
	for _, entry := range resp.List {
		msgs = append(msgs, model.Message{
			ID:      entry.MailID.String(),
			Subject: orDefault(entry.MailSubject, model.NoSubject),
			From:    orDefault(entry.MailFrom, model.UnknownSender),
			Date:    dateOf(entry.MailTimestamp.String(), entry.MailDate),
		})
	}
	return msgs, nil
}

// FetchMessage retrieves the full message, substituting a fail-soft
// placeholder on any failure.
func (a *Adapter) FetchMessage(ctx context.Context, token, id string) model.Message {
	msg, err := a.fetchMessage(ctx, token, id)
	if err != nil {
		return provider.FailureMessage(id, err)
	}
	return msg
}

func (a *Adapter) fetchMessage(ctx context.Context, token, id string) (model.Message, error) {
	params := url.Values{}
	params.Set("f", "fetch_email")
	params.Set("sid_token", token)
	params.Set("email_id", id)

	var resp fetchResponse
	if err := a.client.Get(ctx, params, &resp); err != nil {
		return model.Message{}, err
	}

	size, _ := resp.MailSize.Int64()
	if size <= 0 {
		size = int64(len(resp.MailBody))
	}

	return model.Message{
		ID:                 id,
		Subject:            orDefault(resp.MailSubject, model.NoSubject),
		From:               orDefault(resp.MailFrom, model.UnknownSender),
		Date:               dateOf(resp.MailTimestamp.String(), resp.MailDate),
		Body:               resp.MailBody,
		Size:               size,
		FetchedFullContent: true,
	}, nil
}

// Domains returns the domains the service is known to assign.
func (a *Adapter) Domains() []string {
	out := make([]string, len(domains))
	copy(out, domains)
	return out
}

// ExpirationSeconds returns the address lifetime for display purposes.
func (a *Adapter) ExpirationSeconds() int { return expirationSeconds }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// dateOf prefers the unix timestamp field, falling back to the
// preformatted date string.
func dateOf(timestamp, date string) string {
	if timestamp != "" && timestamp != "0" {
		return timestamp
	}
	return date
}
