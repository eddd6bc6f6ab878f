package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Mode is the input mode of the view.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeSearch
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeSearch:
		return "SEARCH"
	default:
		return "UNKNOWN"
	}
}

// KeyMap holds every binding of the tabbed view and its panels.
type KeyMap struct {
	// Tabs
	NewTab   key.Binding
	CloseTab key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	JumpTab  key.Binding
	Switcher key.Binding

	// Panes
	NextPane      key.Binding
	FocusRequest  key.Binding
	FocusResponse key.Binding

	// Request editor
	EditURL     key.Binding
	CycleMethod key.Binding
	Send        key.Binding
	NextSection key.Binding
	CopyCurl    key.Binding

	// Response viewer
	Maximize   key.Binding
	ScrollDown key.Binding
	ScrollUp   key.Binding
	PageDown   key.Binding
	PageUp     key.Binding
	Copy       key.Binding

	// Text input
	Commit key.Binding
	Cancel key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NewTab: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "new tab"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close tab"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("ctrl+right", "]"),
			key.WithHelp("]", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("ctrl+left", "["),
			key.WithHelp("[", "prev tab"),
		),
		JumpTab: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9"),
			key.WithHelp("alt+1-9", "jump to tab"),
		),
		Switcher: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "find tab"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "next pane"),
		),
		FocusRequest: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1/2", "pane"),
		),
		FocusResponse: key.NewBinding(
			key.WithKeys("2"),
		),
		EditURL: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit URL"),
		),
		CycleMethod: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "method"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		NextSection: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "section"),
		),
		CopyCurl: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy as curl"),
		),
		Maximize: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "maximize"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/k", "scroll"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy body"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// TabIndex returns the zero-based tab index of an alt+N key.
func TabIndex(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if !strings.HasPrefix(s, "alt+") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "alt+"))
	if err != nil || n < 1 || n > 9 {
		return 0, false
	}
	return n - 1, true
}

// RenderHints renders bindings as a single help line.
func RenderHints(bindings []key.Binding, width int) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(ColorWarn).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(ColorText)
	sep := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(" │ ")

	var hints []string
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" || !b.Enabled() {
			continue
		}
		hints = append(hints, keyStyle.Render(h.Key)+descStyle.Render(" "+h.Desc))
	}

	barStyle := lipgloss.NewStyle().
		Width(width).
		MaxHeight(1).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	return barStyle.Render(strings.Join(hints, sep))
}
