// Package sync drives periodic refresh of every tracked address. One
// goroutine runs the cycle loop; addresses are polled sequentially and
// a failure on one never aborts the rest of the cycle.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/mkral/tempmail/internal/inbox"
	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/provider"
	"github.com/mkral/tempmail/internal/store"
)

// RefreshResultMsg is a tea.Msg sent when an address refresh completes.
type RefreshResultMsg struct {
	Address  string
	NewCount int
	Error    error
}

// CycleDoneMsg is a tea.Msg sent after a full refresh cycle finishes.
type CycleDoneMsg struct {
	Refreshed int
	Failed    int
}

// refreshTimeout is the maximum time allowed for one provider call.
const refreshTimeout = 10 * time.Second

// trigger requests an immediate refresh; an empty address means the
// whole cycle.
type trigger struct {
	address string
}

// TokenFunc resolves the access token for an address. Tokens live in
// the credential store, not in the engine.
type TokenFunc func(address string) (string, error)

// Poller orchestrates background refresh of all tracked addresses.
type Poller struct {
	engine   *inbox.Engine
	registry *provider.Registry
	store    store.Store
	tokenFor TokenFunc
	log      *logrus.Logger

	resultCh   chan tea.Msg
	triggerCh  chan trigger
	intervalCh chan time.Duration
	stopCh     chan struct{}

	mu       gosync.Mutex
	interval time.Duration
	running  bool
}

// New creates a poller over the given engine and registry. tokenFor is
// consulted per address before each provider call.
func New(
	engine *inbox.Engine,
	registry *provider.Registry,
	st store.Store,
	tokenFor TokenFunc,
	interval time.Duration,
	log *logrus.Logger,
) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		engine:     engine,
		registry:   registry,
		store:      st,
		tokenFor:   tokenFor,
		log:        log,
		resultCh:   make(chan tea.Msg, 16),
		triggerCh:  make(chan trigger, 16),
		intervalCh: make(chan time.Duration, 1),
		stopCh:     make(chan struct{}),
		interval:   interval,
	}
}

// Start launches the polling goroutine and returns a subscription
// command that delivers RefreshResultMsg and CycleDoneMsg values to the
// Bubble Tea runtime.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.run()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Interval returns the current polling interval.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// SetInterval changes the polling period. The running ticker is reset
// immediately, so the new period takes effect without waiting out the
// old one.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}

	p.mu.Lock()
	p.interval = d
	p.mu.Unlock()

	select {
	case p.intervalCh <- d:
	default:
	}
}

// RefreshAll triggers an immediate refresh cycle over every address.
func (p *Poller) RefreshAll() tea.Cmd {
	select {
	case p.triggerCh <- trigger{}:
	default:
		// Channel full; a cycle is already queued.
	}
	return nil
}

// RefreshAddress triggers an immediate refresh of a single address. It
// runs through the same merge path as the periodic cycle, so the two
// interleave safely.
func (p *Poller) RefreshAddress(address string) tea.Cmd {
	select {
	case p.triggerCh <- trigger{address: address}:
	default:
	}
	return nil
}

// run is the polling loop. It performs an initial cycle, then refreshes
// on every tick or trigger until stopped.
func (p *Poller) run() {
	ticker := time.NewTicker(p.Interval())
	defer ticker.Stop()

	p.runCycle()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.runCycle()
		case d := <-p.intervalCh:
			ticker.Reset(d)
		case t := <-p.triggerCh:
			if t.address == "" {
				p.runCycle()
			} else {
				p.refreshAddress(t.address)
			}
		}
	}
}

// runCycle refreshes every tracked address sequentially. Per-address
// failures are reported and skipped.
func (p *Poller) runCycle() {
	p.engine.StartCycle()

	addrs := p.engine.Addresses()
	refreshed, failed := 0, 0
	for _, a := range addrs {
		if err := p.refreshAddress(a.Address); err != nil {
			failed++
			continue
		}
		refreshed++
	}

	p.sendResult(CycleDoneMsg{Refreshed: refreshed, Failed: failed})
}

// refreshAddress polls one address's provider, merges the result into
// the cache, and emits a RefreshResultMsg.
func (p *Poller) refreshAddress(address string) error {
	addr, ok := p.engine.Address(address)
	if !ok {
		return fmt.Errorf("address %s is not tracked", address)
	}

	prov, err := p.registry.Provider(addr.Provider)
	if err != nil {
		p.reportFailure(addr, err)
		return err
	}

	token, err := p.tokenFor(address)
	if err != nil {
		p.reportFailure(addr, fmt.Errorf("resolving token: %w", err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	msgs, err := prov.ListMessages(ctx, token)
	if err != nil {
		p.reportFailure(addr, err)
		return err
	}

	res, err := p.engine.MergePoll(ctx, address, msgs)
	if err != nil {
		p.reportFailure(addr, err)
		return err
	}

	if res.HasNew {
		p.notifyNewMail(ctx, addr, res.Added)
	}

	p.sendResult(RefreshResultMsg{Address: address, NewCount: res.Added})
	return nil
}

// notifyNewMail records a notification for freshly arrived messages.
func (p *Poller) notifyNewMail(ctx context.Context, addr model.Address, count int) {
	word := "messages"
	if count == 1 {
		word = "message"
	}
	n := model.Notification{
		Address:   addr.Address,
		Provider:  addr.Provider,
		Message:   fmt.Sprintf("%d new %s for %s", count, word, addr.Address),
		CreatedAt: time.Now(),
	}
	if err := p.store.CreateNotification(ctx, n); err != nil {
		p.log.WithError(err).WithField("address", addr.Address).
			Warn("failed to record notification")
	}
}

// reportFailure logs a refresh error and surfaces it to the UI.
func (p *Poller) reportFailure(addr model.Address, err error) {
	p.log.WithError(err).WithFields(logrus.Fields{
		"address":  addr.Address,
		"provider": addr.Provider,
	}).Warn("refresh failed")

	p.sendResult(RefreshResultMsg{Address: addr.Address, Error: err})
}

// sendResult sends a message on the result channel without blocking.
func (p *Poller) sendResult(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller.
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh
// result. Call after processing a result message to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
