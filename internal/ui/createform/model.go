// Package createform drives the two-step new-address flow: pick a
// provider, optionally pick a preferred domain, then wait on the
// provider call.
package createform

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkral/tempmail/internal/provider"
)

// Mode represents the current state of the create-address flow.
type Mode int

const (
	ModeSelectProvider Mode = iota
	ModeSelectDomain
	ModeCreating
)

// SubmitMsg carries the user's choices once the form completes.
type SubmitMsg struct {
	ProviderKey     string
	PreferredDomain string
}

// CancelMsg signals the form was aborted.
type CancelMsg struct{}

// Model is the create-address form component.
type Model struct {
	mode     Mode
	registry *provider.Registry

	providerForm *huh.Form
	domainForm   *huh.Form

	selectedProvider string
	selectedDomain   string

	spinner spinner.Model
	width   int
	height  int
}

// New creates a new create-address form over the given registry.
func New(registry *provider.Registry, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:     ModeSelectProvider,
		registry: registry,
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// Start resets the flow and returns the command that initializes the
// provider selection form.
func (m *Model) Start() tea.Cmd {
	m.mode = ModeSelectProvider
	m.selectedProvider = ""
	m.selectedDomain = ""
	m.providerForm = m.buildProviderForm()
	return m.providerForm.Init()
}

func (m *Model) buildProviderForm() *huh.Form {
	var opts []huh.Option[string]
	for _, key := range m.registry.Keys() {
		p, err := m.registry.Provider(key)
		if err != nil {
			continue
		}
		label := fmt.Sprintf("%s (expires after %s)",
			p.Name(), expiryLabel(p.ExpirationSeconds()))
		opts = append(opts, huh.NewOption(label, key))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Provider").
				Description("Choose the service that will host the address").
				Options(opts...).
				Value(&m.selectedProvider),
		),
	).WithWidth(m.formWidth())
}

func (m *Model) buildDomainForm(domains []string) *huh.Form {
	opts := make([]huh.Option[string], 0, len(domains)+1)
	opts = append(opts, huh.NewOption("(provider default)", ""))
	for _, d := range domains {
		opts = append(opts, huh.NewOption("@"+d, d))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Preferred Domain").
				Description("Some providers honor a domain preference").
				Options(opts...).
				Value(&m.selectedDomain),
		),
	).WithWidth(m.formWidth())
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the create-address flow.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if m.mode == ModeCreating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(tick)
			return m, cmd
		}
		return m, nil
	}

	switch m.mode {
	case ModeSelectProvider:
		return m.updateProviderForm(msg)
	case ModeSelectDomain:
		return m.updateDomainForm(msg)
	case ModeCreating:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}
	return m, nil
}

func (m Model) updateProviderForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.providerForm == nil {
		return m, nil
	}

	mdl, cmd := m.providerForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.providerForm = f
	}

	if m.providerForm.State == huh.StateCompleted {
		return m.handleProviderSelected()
	}
	if m.providerForm.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

func (m Model) handleProviderSelected() (Model, tea.Cmd) {
	p, err := m.registry.Provider(m.selectedProvider)
	if err != nil {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	// Providers with a single fixed or server-assigned domain skip the
	// domain step entirely.
	domains := p.Domains()
	if len(domains) < 2 {
		return m.submit()
	}

	m.mode = ModeSelectDomain
	m.domainForm = m.buildDomainForm(domains)
	return m, m.domainForm.Init()
}

func (m Model) updateDomainForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.domainForm == nil {
		return m, nil
	}

	mdl, cmd := m.domainForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.domainForm = f
	}

	if m.domainForm.State == huh.StateCompleted {
		return m.submit()
	}
	if m.domainForm.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	m.mode = ModeCreating
	providerKey := m.selectedProvider
	domain := m.selectedDomain
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return SubmitMsg{ProviderKey: providerKey, PreferredDomain: domain}
		},
	)
}

// View renders the create-address flow.
func (m Model) View() string {
	switch m.mode {
	case ModeSelectProvider:
		return m.viewForm(m.providerForm)
	case ModeSelectDomain:
		return m.viewForm(m.domainForm)
	case ModeCreating:
		style := lipgloss.NewStyle().
			Padding(1, 2).
			Width(m.width).
			Height(m.height)
		return style.Render(fmt.Sprintf(
			"%s Creating address...\n\nPress esc to cancel.",
			m.spinner.View(),
		))
	default:
		return ""
	}
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(f.View())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// expiryLabel formats an expiration in seconds for display.
func expiryLabel(seconds int) string {
	switch {
	case seconds >= 24*3600:
		return fmt.Sprintf("%dd", seconds/(24*3600))
	case seconds >= 3600:
		return fmt.Sprintf("%dh", seconds/3600)
	default:
		return fmt.Sprintf("%dm", seconds/60)
	}
}
