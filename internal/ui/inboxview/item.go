package inboxview

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/theme"
)

// MessageItem wraps a cached message for display in a bubbles/list.
type MessageItem struct {
	Message model.Message
}

// FilterValue returns the string used for fuzzy filtering.
func (i MessageItem) FilterValue() string { return i.Message.Subject }

// Title returns the subject line for the list.
func (i MessageItem) Title() string { return i.Message.Subject }

// Description returns a short summary line for the list.
func (i MessageItem) Description() string {
	return fmt.Sprintf("%s | %s | %s",
		i.Message.From,
		model.FormatTimestamp(i.Message.Date),
		model.FormatSize(i.Message.Size))
}

// ItemDelegate implements list.ItemDelegate for message rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages.
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single message row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	mi, ok := item.(MessageItem)
	if !ok {
		return
	}

	msg := mi.Message

	// Full-content marker: a filled dot means the body has been fetched.
	marker := "○"
	if msg.FetchedFullContent {
		marker = "●"
	}

	fromStr := lipgloss.NewStyle().
		Foreground(theme.ColorBlue).
		Render(msg.From)

	metaStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(fmt.Sprintf("%s  %s",
			model.FormatTimestamp(msg.Date), model.FormatSize(msg.Size)))

	line := fmt.Sprintf("%s %s  %s  %s", marker, fromStr, msg.Subject, metaStr)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
