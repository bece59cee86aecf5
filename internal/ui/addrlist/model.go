// Package addrlist renders the tracked-address list, the application's
// main screen.
package addrlist

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkral/tempmail/internal/inbox"
	"github.com/mkral/tempmail/internal/keys"
	"github.com/mkral/tempmail/internal/theme"
)

// SelectedAddressMsg is sent when the user opens an address's inbox.
type SelectedAddressMsg struct {
	Address string
}

// DeleteAddressMsg is sent when the user asks to delete an address.
type DeleteAddressMsg struct {
	Address string
}

// CopiedMsg is sent after an address has been copied to the clipboard.
type CopiedMsg struct {
	Address string
	Err     error
}

// Model is the address list view component.
type Model struct {
	list   list.Model
	engine *inbox.Engine
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new address list model.
func New(engine *inbox.Engine, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Addresses"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	m := Model{
		list:   l,
		engine: engine,
		keys:   k,
		width:  width,
		height: height,
	}
	m.Reload()
	return m
}

// Reload rebuilds the list items from the engine's current ordering.
func (m *Model) Reload() {
	addrs := m.engine.Addresses()
	items := make([]list.Item, len(addrs))
	for i, a := range addrs {
		items[i] = AddressItem{
			Address:      a,
			MessageCount: m.engine.MessageCount(a.Address),
			HasNew:       m.engine.HasNew(a.Address),
		}
	}
	m.list.SetItems(items)
}

// Selected returns the currently highlighted address, if any.
func (m Model) Selected() (string, bool) {
	item, ok := m.list.SelectedItem().(AddressItem)
	if !ok {
		return "", false
	}
	return item.Address.Address, true
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the address list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Select):
			addr, ok := m.Selected()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return SelectedAddressMsg{Address: addr}
			}

		case key.Matches(keyMsg, m.keys.Delete):
			addr, ok := m.Selected()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return DeleteAddressMsg{Address: addr}
			}

		case key.Matches(keyMsg, m.keys.Copy):
			addr, ok := m.Selected()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return CopiedMsg{Address: addr, Err: clipboard.WriteAll(addr)}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the address list.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when no addresses are tracked.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	return style.Render("No addresses yet.\n\nPress 'n' to create one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
