// Package inboxview renders the message list for one address, most
// recently discovered messages first.
package inboxview

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkral/tempmail/internal/inbox"
	"github.com/mkral/tempmail/internal/keys"
	"github.com/mkral/tempmail/internal/theme"
)

// SelectedMessageMsg is sent when the user opens a message.
type SelectedMessageMsg struct {
	Address   string
	MessageID string
}

// Model is the inbox view component for a single address.
type Model struct {
	list    list.Model
	engine  *inbox.Engine
	keys    *keys.KeyMap
	address string
	width   int
	height  int
}

// New creates a new inbox view model.
func New(engine *inbox.Engine, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		engine: engine,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetAddress points the view at an address and loads its messages.
func (m *Model) SetAddress(address string) {
	m.address = address
	m.list.Title = address
	m.list.ResetSelected()
	m.Reload()
}

// Address returns the address this view is showing.
func (m Model) Address() string {
	return m.address
}

// Reload refreshes the list items from the engine's cache.
func (m *Model) Reload() {
	msgs := m.engine.Messages(m.address)
	items := make([]list.Item, len(msgs))
	for i, msg := range msgs {
		items[i] = MessageItem{Message: msg}
	}
	m.list.SetItems(items)
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keys.Select) {
			item, ok := m.list.SelectedItem().(MessageItem)
			if !ok {
				return m, nil
			}
			addr := m.address
			return m, func() tea.Msg {
				return SelectedMessageMsg{
					Address:   addr,
					MessageID: item.Message.ID,
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the inbox view.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		style := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return style.Render("Inbox is empty.\n\nPress 'r' to refresh.")
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
