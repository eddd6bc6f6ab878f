package components

import (
	"github.com/artpar/reqtabs/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

// EmptyPlaceholderText is shown before a tab's first run.
const EmptyPlaceholderText = "No response yet. Press Enter to send."

// EmptyPlaceholder fills the response slot of a tab that never ran.
type EmptyPlaceholder struct {
	*tui.BaseComponent
}

// NewEmptyPlaceholder creates the placeholder.
func NewEmptyPlaceholder() *EmptyPlaceholder {
	return &EmptyPlaceholder{BaseComponent: tui.NewBaseComponent("Response")}
}

// Update handles size and focus messages.
func (p *EmptyPlaceholder) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	p.HandleCommon(msg)
	return p, nil
}

// View renders the component.
func (p *EmptyPlaceholder) View() string {
	if p.Width() == 0 || p.Height() == 0 {
		return ""
	}
	body := tui.CenterText(EmptyPlaceholderText, p.Width()-2, p.Height()-2, tui.ColorMuted)
	return tui.Frame(body, p.Width(), p.Height(), p.Focused())
}
