// Package inbox holds the per-address message cache and the merge rules
// that reconcile freshly polled summaries against it. The cache is the
// only shared mutable state in the app; everything goes through Engine.
package inbox

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/store"
)

// PollResult reports the outcome of merging one poll into the cache.
type PollResult struct {
	Previous int
	Added    int
	HasNew   bool
}

// Engine owns the mailbox cache: every tracked address and the ordered
// set of messages discovered for it. Merges are additive; cached full
// content is never overwritten by a poorer summary.
type Engine struct {
	mu    sync.Mutex
	store store.Store

	addresses map[string]*model.Address
	messages  map[string][]model.Message

	// hasNew marks addresses that gained messages during the current
	// polling cycle; they sort ahead of everything else.
	hasNew map[string]bool
}

// New creates an empty engine backed by the given store.
func New(st store.Store) *Engine {
	return &Engine{
		store:     st,
		addresses: make(map[string]*model.Address),
		messages:  make(map[string][]model.Message),
		hasNew:    make(map[string]bool),
	}
}

// Load populates the cache from the store. Call once at startup, before
// the poller runs.
func (e *Engine) Load(ctx context.Context) error {
	addrs, err := e.store.GetAddresses(ctx)
	if err != nil {
		return fmt.Errorf("loading addresses: %w", err)
	}
	msgs, err := e.store.GetAllMessages(ctx)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range addrs {
		a := addrs[i]
		e.addresses[a.Address] = &a
		e.messages[a.Address] = msgs[a.Address]
	}
	return nil
}

// AddAddress registers a newly created address and persists it.
func (e *Engine) AddAddress(ctx context.Context, addr model.Address) error {
	if err := e.store.UpsertAddress(ctx, addr); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	a := addr
	e.addresses[a.Address] = &a
	e.messages[a.Address] = nil
	return nil
}

// DeleteAddress removes an address and purges its cached messages, both
// in memory and in the store.
func (e *Engine) DeleteAddress(ctx context.Context, address string) error {
	if err := e.store.DeleteAddress(ctx, address); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.addresses, address)
	delete(e.messages, address)
	delete(e.hasNew, address)
	return nil
}

// Address returns a copy of the tracked address, if known.
func (e *Engine) Address(address string) (model.Address, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.addresses[address]
	if !ok {
		return model.Address{}, false
	}
	return *a, true
}

// Addresses returns all tracked addresses: those with new mail this
// cycle first, the rest by last update descending.
func (e *Engine) Addresses() []model.Address {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Address, 0, len(e.addresses))
	for _, a := range e.addresses {
		out = append(out, *a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := e.hasNew[out[i].Address], e.hasNew[out[j].Address]
		if ni != nj {
			return ni
		}
		return out[i].LastUpdatedAt.After(out[j].LastUpdatedAt)
	})
	return out
}

// Messages returns a copy of an address's cached messages in reverse
// discovery order, most recently discovered first.
func (e *Engine) Messages(address string) []model.Message {
	e.mu.Lock()
	defer e.mu.Unlock()

	cached := e.messages[address]
	out := make([]model.Message, len(cached))
	for i, m := range cached {
		out[len(cached)-1-i] = m
	}
	return out
}

// MessageCount returns how many messages are cached for an address.
func (e *Engine) MessageCount(address string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.messages[address])
}

// HasNew reports whether an address gained messages this cycle.
func (e *Engine) HasNew(address string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasNew[address]
}

// StartCycle clears the per-cycle new-mail marks. The poller calls this
// at the top of every refresh cycle.
func (e *Engine) StartCycle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hasNew = make(map[string]bool)
}

// MergePoll reconciles freshly polled summaries against the cache for
// one address. Unknown ids are appended in the order the poll returned
// them; known ids leave the cached entry untouched, so previously
// fetched full bodies survive lossy re-polls. The merge is idempotent.
func (e *Engine) MergePoll(ctx context.Context, address string, fresh []model.Message) (PollResult, error) {
	e.mu.Lock()

	if _, ok := e.addresses[address]; !ok {
		e.mu.Unlock()
		return PollResult{}, fmt.Errorf("address %s is not tracked", address)
	}

	cached := e.messages[address]
	known := make(map[string]bool, len(cached))
	for _, m := range cached {
		known[m.ID] = true
	}

	previous := len(cached)
	for _, m := range fresh {
		if known[m.ID] {
			continue
		}
		cached = append(cached, m)
		known[m.ID] = true
	}

	res := PollResult{
		Previous: previous,
		Added:    len(cached) - previous,
		HasNew:   len(cached) > previous,
	}

	if !res.HasNew {
		e.mu.Unlock()
		return res, nil
	}

	e.messages[address] = cached
	e.hasNew[address] = true
	addr := e.addresses[address]
	addr.LastUpdatedAt = time.Now()
	addrCopy := *addr
	snapshot := make([]model.Message, len(cached))
	copy(snapshot, cached)
	e.mu.Unlock()

	if err := e.store.ReplaceMessages(ctx, address, snapshot); err != nil {
		return res, fmt.Errorf("persisting messages for %s: %w", address, err)
	}
	if err := e.store.UpsertAddress(ctx, addrCopy); err != nil {
		return res, fmt.Errorf("persisting address %s: %w", address, err)
	}
	return res, nil
}

// MergeFetch upserts a fetched full message into the cache, inserting
// if the id was never seen (some list endpoints are unreliable). The
// record is always marked as full content.
func (e *Engine) MergeFetch(ctx context.Context, address, id string, full model.Message) error {
	full.ID = id
	full.FetchedFullContent = true

	e.mu.Lock()

	if _, ok := e.addresses[address]; !ok {
		e.mu.Unlock()
		return fmt.Errorf("address %s is not tracked", address)
	}

	cached := e.messages[address]
	replaced := false
	for i, m := range cached {
		if m.ID == id {
			cached[i] = full
			replaced = true
			break
		}
	}
	if !replaced {
		cached = append(cached, full)
		e.messages[address] = cached
	}

	snapshot := make([]model.Message, len(cached))
	copy(snapshot, cached)
	e.mu.Unlock()

	if err := e.store.ReplaceMessages(ctx, address, snapshot); err != nil {
		return fmt.Errorf("persisting messages for %s: %w", address, err)
	}
	return nil
}
