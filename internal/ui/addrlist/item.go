package addrlist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/theme"
)

// AddressItem wraps a tracked address for display in a bubbles/list.
type AddressItem struct {
	Address model.Address

	// MessageCount is the cached inbox size at render time.
	MessageCount int

	// HasNew marks addresses that gained mail during the current cycle.
	HasNew bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i AddressItem) FilterValue() string { return i.Address.Address }

// Title returns the address for the list.
func (i AddressItem) Title() string { return i.Address.Address }

// Description returns a short summary line for the list.
func (i AddressItem) Description() string {
	return fmt.Sprintf("%s | %d messages | %s",
		i.Address.Provider, i.MessageCount, relativeTime(i.Address.LastUpdatedAt))
}

// ItemDelegate implements list.ItemDelegate for address rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages.
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single address row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ai, ok := item.(AddressItem)
	if !ok {
		return
	}

	badge := theme.ProviderLabelStyle(ai.Address.Provider).
		Render(ai.Address.Provider)

	countStr := fmt.Sprintf("%d msg", ai.MessageCount)
	if ai.MessageCount == 1 {
		countStr = "1 msg"
	}

	newMark := ""
	if ai.HasNew {
		newMark = theme.NewMailStyle.Render(" ● new")
	}

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(ai.Address.LastUpdatedAt))

	line := fmt.Sprintf("%s %s  %s%s  %s",
		badge, ai.Address.Address, countStr, newMark, timeStr)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}
