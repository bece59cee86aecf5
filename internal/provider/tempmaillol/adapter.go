// Package tempmaillol implements the provider contract for TempMail.lol.
// The service authenticates with nothing more than a token embedded in
// the request path, and its inbox endpoint returns a volatile array with
// no per-message identifiers. Ids are therefore synthesized from list
// position, and the adapter keeps a per-token cache so content seen at a
// position once can be served again even after the remote array changes.
//
// Positional ids are not content-stable: if the service prepends a
// message, position "0" now names different content while the cache
// still holds the old entry. This mirrors the service's limitations and
// is deliberately left as-is rather than papered over.
package tempmaillol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/provider"
)

const (
	// Key is the registry key for this provider.
	Key = "tempmaillol"

	defaultBaseURL = "https://api.tempmail.lol"

	// Rush addresses are short-lived; an hour is the documented ceiling.
	expirationSeconds = 3600
)

// generateResponse is the payload of GET /generate/rush.
type generateResponse struct {
	Address string `json:"address"`
	Token   string `json:"token"`
}

// inboxResponse is the payload of GET /auth/{token}.
type inboxResponse struct {
	Email []inboxEntry `json:"email"`
}

type inboxEntry struct {
	Subject string `json:"subject"`
	From    string `json:"from"`
	Body    string `json:"body"`
	HTML    string `json:"html"`
}

// Adapter implements provider.Provider for TempMail.lol.
type Adapter struct {
	baseURL    string
	httpClient *http.Client

	// seen holds every message observed per token, in positional order.
	// Entries persist after the remote array stops returning them.
	mu   sync.Mutex
	seen map[string][]model.Message
}

// New creates a TempMail.lol adapter against the public API.
func New() *Adapter {
	return NewWithBaseURL(defaultBaseURL)
}

// NewWithBaseURL creates an adapter against a specific endpoint URL.
func NewWithBaseURL(baseURL string) *Adapter {
	return &Adapter{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		seen: make(map[string][]model.Message),
	}
}

// Key returns the registry key for TempMail.lol.
func (a *Adapter) Key() string { return Key }

// Name returns the human-readable service name.
func (a *Adapter) Name() string { return "TempMail.lol" }

// CreateAddress generates a rush address. The service assigns the
// domain; preferredDomain is not transmitted.
func (a *Adapter) CreateAddress(ctx context.Context, preferredDomain string) (provider.Identity, error) {
	var resp generateResponse
	if err := a.get(ctx, "/generate/rush", &resp); err != nil {
		return provider.Identity{}, &provider.UnavailableError{
			Provider: Key, Op: "create address", Err: err,
		}
	}
	if resp.Address == "" || resp.Token == "" {
		return provider.Identity{}, &provider.UnavailableError{
			Provider: Key, Op: "create address",
			Err: fmt.Errorf("response missing address or token"),
		}
	}
	return provider.Identity{Address: resp.Address, Token: resp.Token}, nil
}

// ListMessages fetches the volatile inbox array, merges it into the
// positional cache, and returns the cached union. New positions are
// normalized and appended; known positions keep their cached content.
// The inbox endpoint includes bodies, so every entry is full content.
func (a *Adapter) ListMessages(ctx context.Context, token string) ([]model.Message, error) {
	var resp inboxResponse
	if err := a.get(ctx, "/auth/"+token, &resp); err != nil {
		return nil, &provider.UnavailableError{
			Provider: Key, Op: "list messages", Err: err,
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	cached := a.seen[token]
	for i, entry := range resp.Email {
		if i < len(cached) {
			continue
		}
		cached = append(cached, normalize(strconv.Itoa(i), entry))
	}
	a.seen[token] = cached

	out := make([]model.Message, len(cached))
	copy(out, cached)
	return out, nil
}

// FetchMessage serves the positional cache first, then falls back to
// re-fetching the inbox and indexing into it. Failures produce the
// fail-soft placeholder.
func (a *Adapter) FetchMessage(ctx context.Context, token, id string) model.Message {
	a.mu.Lock()
	for _, m := range a.seen[token] {
		if m.ID == id {
			a.mu.Unlock()
			return m
		}
	}
	a.mu.Unlock()

	msg, err := a.fetchMessage(ctx, token, id)
	if err != nil {
		return provider.FailureMessage(id, err)
	}
	return msg
}

func (a *Adapter) fetchMessage(ctx context.Context, token, id string) (model.Message, error) {
	index, err := strconv.Atoi(id)
	if err != nil {
		return model.Message{}, fmt.Errorf("malformed positional id %q", id)
	}

	var resp inboxResponse
	if err := a.get(ctx, "/auth/"+token, &resp); err != nil {
		return model.Message{}, err
	}
	if index < 0 || index >= len(resp.Email) {
		return model.Message{}, fmt.Errorf("no message at position %d", index)
	}

	return normalize(id, resp.Email[index]), nil
}

// Domains returns the service's advertised domain. Actual addresses use
// rotating domains the generate endpoint assigns.
func (a *Adapter) Domains() []string {
	return []string{"tempmail.lol"}
}

// ExpirationSeconds returns the address lifetime for display purposes.
func (a *Adapter) ExpirationSeconds() int { return expirationSeconds }

func (a *Adapter) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d on GET %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshaling GET %s response: %w", path, err)
	}
	return nil
}

// normalize maps an inbox entry onto the common schema, preferring HTML
// content over the plain-text body.
func normalize(id string, entry inboxEntry) model.Message {
	body := entry.HTML
	if body == "" {
		body = entry.Body
	}

	from := entry.From
	if from == "" {
		from = model.UnknownSender
	}
	subject := entry.Subject
	if subject == "" {
		subject = model.NoSubject
	}

	return model.Message{
		ID:                 id,
		Subject:            subject,
		From:               from,
		Body:               body,
		Size:               int64(len(body)),
		FetchedFullContent: true,
	}
}
