package components

import (
	"github.com/artpar/reqtabs/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrorPanel renders the error of a failed run.
type ErrorPanel struct {
	*tui.BaseComponent
	err error
}

// NewErrorPanel creates an error panel.
func NewErrorPanel() *ErrorPanel {
	return &ErrorPanel{
		BaseComponent: tui.NewBaseComponent("Error"),
	}
}

// Update handles size and focus messages.
func (p *ErrorPanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	p.HandleCommon(msg)
	return p, nil
}

// SetError sets the error to show.
func (p *ErrorPanel) SetError(err error) {
	p.err = err
}

// Error returns the error shown.
func (p *ErrorPanel) Error() error {
	return p.err
}

// View renders the component.
func (p *ErrorPanel) View() string {
	if p.Width() == 0 || p.Height() == 0 {
		return ""
	}
	innerWidth := p.Width() - 2

	msg := "unknown error"
	if p.err != nil {
		msg = p.err.Error()
	}

	title := tui.RenderTitle("Request failed", innerWidth, p.Focused())
	body := lipgloss.NewStyle().
		Width(innerWidth).
		Foreground(tui.ColorError).
		Padding(1, 1).
		Render(msg)
	return tui.Frame(title+"\n"+body, p.Width(), p.Height(), p.Focused())
}
