// Package hydramail implements the provider contract for Mail.gw and
// Mail.tm. The two services expose the same hydra-flavored REST API:
// dynamically served domains, a two-step signup (create an account with
// a locally generated address and password, then exchange those
// credentials for a bearer token), and bearer-authenticated message
// endpoints.
package hydramail

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/provider"
)

// Registry keys for the two services backed by this package.
const (
	MailGwKey = "mailgw"
	MailTmKey = "mailtm"
)

// Accounts on both services persist for about a week.
const expirationSeconds = 7 * 24 * 3600

const localPartAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Adapter implements provider.Provider for one hydra-mail service.
type Adapter struct {
	key           string
	name          string
	defaultDomain string
	client        *Client

	// domains is populated on the first successful fetch and reused for
	// the process lifetime.
	mu      sync.Mutex
	domains []string
}

// NewMailGw creates an adapter for Mail.gw.
func NewMailGw() *Adapter {
	return New(MailGwKey, "Mail.gw", "https://api.mail.gw", "mail.gw")
}

// NewMailTm creates an adapter for Mail.tm.
func NewMailTm() *Adapter {
	return New(MailTmKey, "Mail.tm", "https://api.mail.tm", "mail.tm")
}

// New creates an adapter for a hydra-mail service at the given API root.
func New(key, name, baseURL, defaultDomain string) *Adapter {
	return &Adapter{
		key:           key,
		name:          name,
		defaultDomain: defaultDomain,
		client:        NewClient(baseURL),
	}
}

// Key returns the registry key for this service.
func (a *Adapter) Key() string { return a.key }

// Name returns the human-readable service name.
func (a *Adapter) Name() string { return a.name }

// CreateAddress generates a random local part and password, creates the
// account, and exchanges the credentials for a bearer token.
func (a *Adapter) CreateAddress(ctx context.Context, preferredDomain string) (provider.Identity, error) {
	domain := preferredDomain
	if domain == "" {
		available, err := a.fetchDomains(ctx)
		if err != nil {
			return provider.Identity{}, &provider.UnavailableError{
				Provider: a.key, Op: "fetch domains", Err: err,
			}
		}
		if len(available) == 0 {
			return provider.Identity{}, &provider.UnavailableError{
				Provider: a.key, Op: "fetch domains",
				Err: fmt.Errorf("no domains available"),
			}
		}
		domain = available[rand.IntN(len(available))]
	}

	address := randString(10) + "@" + domain
	creds := accountRequest{
		Address:  address,
		Password: randString(12),
	}

	if err := a.client.Post(ctx, "/accounts", creds, nil); err != nil {
		return provider.Identity{}, &provider.UnavailableError{
			Provider: a.key, Op: "create account", Err: err,
		}
	}

	var tok tokenResponse
	if err := a.client.Post(ctx, "/token", creds, &tok); err != nil {
		return provider.Identity{}, &provider.UnavailableError{
			Provider: a.key, Op: "issue token", Err: err,
		}
	}
	if tok.Token == "" {
		return provider.Identity{}, &provider.UnavailableError{
			Provider: a.key, Op: "issue token",
			Err: fmt.Errorf("response missing token"),
		}
	}

	return provider.Identity{Address: address, Token: tok.Token}, nil
}

// ListMessages returns message summaries for the account's bearer token.
func (a *Adapter) ListMessages(ctx context.Context, token string) ([]model.Message, error) {
	var resp listResponse
	if err := a.client.Get(ctx, "/messages", token, &resp); err != nil {
		return nil, &provider.UnavailableError{
			Provider: a.key, Op: "list messages", Err: err,
		}
	}

	msgs := make([]model.Message, 0, len(resp.Members))
	for _, m := range resp.Members {
		msgs = append(msgs, model.Message{
			ID:      m.ID,
			Subject: orDefault(m.Subject, model.NoSubject),
			From:    orDefault(m.From.Address, model.UnknownSender),
			Date:    m.CreatedAt,
		})
	}
	return msgs, nil
}

// FetchMessage retrieves the full message, substituting a fail-soft
// placeholder on any failure. HTML content is preferred over plain text;
// the service returns HTML as a list of fragments which are joined.
func (a *Adapter) FetchMessage(ctx context.Context, token, id string) model.Message {
	msg, err := a.fetchMessage(ctx, token, id)
	if err != nil {
		return provider.FailureMessage(id, err)
	}
	return msg
}

func (a *Adapter) fetchMessage(ctx context.Context, token, id string) (model.Message, error) {
	var detail messageDetail
	if err := a.client.Get(ctx, "/messages/"+id, token, &detail); err != nil {
		return model.Message{}, err
	}

	body := strings.Join(detail.HTML, "\n")
	if strings.TrimSpace(body) == "" {
		body = detail.Text
	}

	size := detail.Size
	if size <= 0 {
		size = int64(len(body))
	}

	return model.Message{
		ID:                 id,
		Subject:            orDefault(detail.Subject, model.NoSubject),
		From:               orDefault(detail.From.Address, model.UnknownSender),
		Date:               detail.CreatedAt,
		Body:               body,
		Size:               size,
		FetchedFullContent: true,
	}, nil
}

// Domains returns the cached dynamic domain list, or the service's
// default domain until the first successful fetch.
func (a *Adapter) Domains() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.domains) == 0 {
		return []string{a.defaultDomain}
	}
	out := make([]string, len(a.domains))
	copy(out, a.domains)
	return out
}

// ExpirationSeconds returns the account lifetime for display purposes.
func (a *Adapter) ExpirationSeconds() int { return expirationSeconds }

// fetchDomains returns the service's usable domains, fetching them once
// and caching the result.
func (a *Adapter) fetchDomains(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	cached := a.domains
	a.mu.Unlock()
	if len(cached) > 0 {
		return cached, nil
	}

	var resp domainsResponse
	if err := a.client.Get(ctx, "/domains", "", &resp); err != nil {
		return nil, err
	}

	fetched := make([]string, 0, len(resp.Members))
	for _, d := range resp.Members {
		if d.Domain != "" {
			fetched = append(fetched, d.Domain)
		}
	}

	a.mu.Lock()
	a.domains = fetched
	a.mu.Unlock()
	return fetched, nil
}

func randString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = localPartAlphabet[rand.IntN(len(localPartAlphabet))]
	}
	return string(b)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
