// Package app wires the views, the mailbox engine, and the poller into
// the root Bubble Tea model.
package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/mkral/tempmail/internal/inbox"
	"github.com/mkral/tempmail/internal/keys"
	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/provider"
	"github.com/mkral/tempmail/internal/store"
	appsync "github.com/mkral/tempmail/internal/sync"
	"github.com/mkral/tempmail/internal/ui"
	"github.com/mkral/tempmail/internal/ui/addrlist"
	"github.com/mkral/tempmail/internal/ui/createform"
	helpview "github.com/mkral/tempmail/internal/ui/help"
	"github.com/mkral/tempmail/internal/ui/inboxview"
	"github.com/mkral/tempmail/internal/ui/msgview"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewAddresses ViewState = iota
	ViewInbox
	ViewMessage
	ViewCreate
	ViewHelp
)

// pollIntervals are the selectable polling periods, cycled with 'i'.
var pollIntervals = []int{2, 5, 10, 30, 60}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the shared mailbox engine.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout

	store    store.Store
	engine   *inbox.Engine
	registry *provider.Registry
	poller   *appsync.Poller
	cfg      *model.AppConfig
	keys     *keys.KeyMap
	log      *logrus.Logger

	addrList   addrlist.Model
	inboxView  inboxview.Model
	msgView    msgview.Model
	createForm createform.Model
	helpView   helpview.Model

	ready       bool
	unreadCount int
	statusMsg   string
}

// New creates the root application model.
func New(
	st store.Store,
	engine *inbox.Engine,
	registry *provider.Registry,
	poller *appsync.Poller,
	cfg *model.AppConfig,
	log *logrus.Logger,
) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView: ViewAddresses,
		store:       st,
		engine:      engine,
		registry:    registry,
		poller:      poller,
		cfg:         cfg,
		keys:        k,
		log:         log,
		addrList:    addrlist.New(engine, k, 80, 24),
		inboxView:   inboxview.New(engine, k, 80, 24),
		msgView:     msgview.New(80, 24),
		createForm:  createform.New(registry, 80, 24),
		helpView:    helpview.New(k, 80, 24),
	}
}

// Init starts background polling.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.poller.Start(),
		m.fetchUnreadCount(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.addrList.SetSize(w, h)
		m.inboxView.SetSize(w, h)
		m.msgView.SetSize(w, h)
		m.createForm.SetSize(w, h)
		m.helpView.SetSize(w, h)
		return m.updateActiveView(msg)

	case appsync.RefreshResultMsg:
		if msg.Error != nil {
			m.statusMsg = fmt.Sprintf("refresh failed for %s: %v", msg.Address, msg.Error)
		} else if msg.NewCount > 0 {
			word := "messages"
			if msg.NewCount == 1 {
				word = "message"
			}
			m.statusMsg = fmt.Sprintf("%d new %s for %s", msg.NewCount, word, msg.Address)
		}
		m.addrList.Reload()
		if m.currentView == ViewInbox && m.inboxView.Address() == msg.Address {
			m.inboxView.Reload()
		}
		return m, tea.Batch(m.poller.WaitForNextResult(), m.fetchUnreadCount())

	case appsync.CycleDoneMsg:
		m.addrList.Reload()
		return m, m.poller.WaitForNextResult()

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case addrlist.SelectedAddressMsg:
		m.previousView = m.currentView
		m.currentView = ViewInbox
		m.inboxView.SetAddress(msg.Address)
		return m, m.poller.RefreshAddress(msg.Address)

	case addrlist.DeleteAddressMsg:
		return m, m.deleteAddress(msg.Address)

	case addrlist.CopiedMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.Err)
		} else {
			m.statusMsg = fmt.Sprintf("copied %s", msg.Address)
		}
		return m, nil

	case inboxview.SelectedMessageMsg:
		m.previousView = m.currentView
		m.currentView = ViewMessage
		m.msgView.SetLoading(msg.Address, msg.MessageID)
		return m, m.fetchMessage(msg.Address, msg.MessageID)

	case createform.SubmitMsg:
		return m, m.createAddress(msg.ProviderKey, msg.PreferredDomain)

	case createform.CancelMsg:
		m.currentView = ViewAddresses
		return m, nil

	case addressCreatedMsg:
		m.currentView = ViewAddresses
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("create failed: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("created %s", msg.address)
		m.addrList.Reload()
		return m, m.poller.RefreshAddress(msg.address)

	case addressDeletedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("delete failed: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("deleted %s", msg.address)
		m.addrList.Reload()
		if m.currentView != ViewAddresses && m.inboxView.Address() == msg.address {
			m.currentView = ViewAddresses
		}
		return m, nil

	case messageFetchedMsg:
		if m.currentView == ViewMessage {
			m.msgView.SetMessage(msg.address, msg.message)
		}
		m.inboxView.Reload()
		return m, nil

	case tea.KeyMsg:
		if newModel, cmd, handled := m.handleGlobalKeys(msg); handled {
			return newModel, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that apply regardless of the active
// view. Returns handled=false to let the active view take the key.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	// The create form owns all input while it is active except ctrl+c.
	if m.currentView == ViewCreate && msg.String() != "ctrl+c" {
		return m, nil, false
	}

	switch msg.String() {
	case "ctrl+c":
		m.poller.Stop()
		return m, tea.Quit, true

	case "q":
		if m.currentView == ViewAddresses {
			m.poller.Stop()
			return m, tea.Quit, true
		}

	case "esc":
		switch m.currentView {
		case ViewMessage:
			m.currentView = ViewInbox
			return m, nil, true
		case ViewInbox, ViewHelp:
			m.currentView = ViewAddresses
			return m, nil, true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case "n":
		if m.currentView == ViewAddresses {
			m.previousView = m.currentView
			m.currentView = ViewCreate
			return m, m.createForm.Start(), true
		}

	case "r":
		switch m.currentView {
		case ViewAddresses:
			return m, m.poller.RefreshAll(), true
		case ViewInbox:
			return m, m.poller.RefreshAddress(m.inboxView.Address()), true
		}

	case "i":
		if m.currentView == ViewAddresses {
			m.cycleInterval()
			return m, nil, true
		}
	}

	return m, nil, false
}

// cycleInterval advances to the next polling period and persists it.
func (m *Model) cycleInterval() {
	current := int(m.poller.Interval() / time.Second)
	next := pollIntervals[0]
	for i, v := range pollIntervals {
		if v == current {
			next = pollIntervals[(i+1)%len(pollIntervals)]
			break
		}
	}

	m.poller.SetInterval(time.Duration(next) * time.Second)
	m.cfg.Poll.IntervalSec = next
	if err := model.SaveConfig(model.DefaultConfigPath(), m.cfg); err != nil {
		m.log.WithError(err).Warn("failed to persist poll interval")
	}
	m.statusMsg = fmt.Sprintf("poll interval: %ds", next)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAddresses:
		m.addrList, cmd = m.addrList.Update(msg)
	case ViewInbox:
		m.inboxView, cmd = m.inboxView.Update(msg)
	case ViewMessage:
		m.msgView, cmd = m.msgView.Update(msg)
	case ViewCreate:
		m.createForm, cmd = m.createForm.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "tempmail"
	if m.unreadCount > 0 {
		headerTitle = fmt.Sprintf("tempmail [%d new]", m.unreadCount)
	}
	header := m.layout.RenderHeader(headerTitle, m.pollStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewAddresses:
		return m.addrList.View()
	case ViewInbox:
		return m.inboxView.View()
	case ViewMessage:
		return m.msgView.View()
	case ViewCreate:
		return m.createForm.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// pollStatus returns a short string describing the polling state.
func (m Model) pollStatus() string {
	return fmt.Sprintf("poll %ds", int(m.poller.Interval()/time.Second))
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMsg != "" && m.currentView == ViewAddresses {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewInbox:
		return "enter open | r refresh | esc back"
	case ViewMessage:
		return "j/k scroll | v raw body | esc back"
	case ViewCreate:
		return "enter select | esc cancel"
	default:
		return "q quit | ? help | n new | d delete | c copy | r refresh | i interval"
	}
}
