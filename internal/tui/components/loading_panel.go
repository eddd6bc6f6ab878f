package components

import (
	"github.com/artpar/reqtabs/internal/tui"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadingPanel shows a spinner while a request runs.
type LoadingPanel struct {
	*tui.BaseComponent
	spinner spinner.Model
}

// NewLoadingPanel creates a loading indicator.
func NewLoadingPanel() *LoadingPanel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(tui.ColorWarn)
	return &LoadingPanel{
		BaseComponent: tui.NewBaseComponent("Loading"),
		spinner:       s,
	}
}

// Init starts the spinner.
func (p *LoadingPanel) Init() tea.Cmd {
	return p.spinner.Tick
}

// Update advances the spinner.
func (p *LoadingPanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	if p.HandleCommon(msg) {
		return p, nil
	}
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(tick)
		return p, cmd
	}
	return p, nil
}

// View renders the component.
func (p *LoadingPanel) View() string {
	if p.Width() == 0 || p.Height() == 0 {
		return ""
	}
	text := p.spinner.View() + " Sending request..."
	body := tui.CenterText(text, p.Width()-2, p.Height()-2, tui.ColorWarn)
	return tui.Frame(body, p.Width(), p.Height(), p.Focused())
}
