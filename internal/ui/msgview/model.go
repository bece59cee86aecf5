// Package msgview renders a single message's full content in a
// scrollable viewport, with HTML reduced to plain text.
package msgview

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/theme"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// Model is the message detail view component.
type Model struct {
	viewport viewport.Model
	address  string
	message  model.Message
	loading  bool

	// raw switches between the plain-text rendering and the body as the
	// provider sent it.
	raw bool

	width  int
	height int
}

// New creates a new message view model.
func New(width, height int) Model {
	vp := viewport.New(width-4, height-8)
	return Model{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// SetLoading puts the view into a loading state while the full body is
// fetched.
func (m *Model) SetLoading(address, id string) {
	m.loading = true
	m.address = address
	m.message = model.Message{ID: id}
}

// SetMessage shows a fetched message.
func (m *Model) SetMessage(address string, msg model.Message) {
	m.loading = false
	m.address = address
	m.message = msg
	m.raw = false
	m.viewport.SetContent(renderBody(msg.Body))
	m.viewport.GotoTop()
}

// Message returns the message currently displayed.
func (m Model) Message() model.Message {
	return m.message
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the message view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "v" && !m.loading {
		m.raw = !m.raw
		if m.raw {
			m.viewport.SetContent(m.message.Body)
		} else {
			m.viewport.SetContent(renderBody(m.message.Body))
		}
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the message view.
func (m Model) View() string {
	if m.loading {
		style := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return style.Render("Loading message...")
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	header := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(m.message.Subject),
		fmt.Sprintf("%s %s", labelStyle.Render("From:"), m.message.From),
		fmt.Sprintf("%s %s", labelStyle.Render("To:"), m.address),
		fmt.Sprintf("%s %s  %s",
			labelStyle.Render("Date:"),
			model.FormatTimestamp(m.message.Date),
			model.FormatSize(m.message.Size)),
		"",
	)

	content := lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 8
	m.viewport.Height = height - 10
}

// renderBody reduces a message body to plain text for the terminal.
// Bodies that do not look like HTML pass through unchanged.
func renderBody(body string) string {
	if !strings.Contains(body, "<") {
		return strings.TrimSpace(body)
	}
	return stripHTML(body)
}

// stripHTML removes HTML tags from a string and decodes common
// entities, providing a basic plain-text rendering.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
