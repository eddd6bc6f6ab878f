package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Component is the interface for all TUI components.
type Component interface {
	// Init initializes the component.
	Init() tea.Cmd

	// Update handles messages and returns the updated component.
	Update(msg tea.Msg) (Component, tea.Cmd)

	// View renders the component.
	View() string

	// Title returns the component title.
	Title() string

	// Focused returns true if the component is focused.
	Focused() bool

	// Focus sets the component as focused.
	Focus()

	// Blur removes focus from the component.
	Blur()

	// SetSize sets the component dimensions.
	SetSize(width, height int)

	// Width returns the component width.
	Width() int

	// Height returns the component height.
	Height() int
}

// FocusMsg is sent when a component should gain focus.
type FocusMsg struct{}

// BlurMsg is sent when a component should lose focus.
type BlurMsg struct{}

// NotifyMsg asks the view to flash a short message in the status bar.
type NotifyMsg struct {
	Message string
	IsError bool
}

// Palette shared by every panel.
const (
	ColorAccent    = lipgloss.Color("62")
	ColorHighlight = lipgloss.Color("229")
	ColorMuted     = lipgloss.Color("240")
	ColorSubtle    = lipgloss.Color("238")
	ColorText      = lipgloss.Color("252")
	ColorWarn      = lipgloss.Color("214")
	ColorError     = lipgloss.Color("196")
	ColorSuccess   = lipgloss.Color("34")
)

// BaseComponent provides the bookkeeping shared by simple components.
type BaseComponent struct {
	title   string
	focused bool
	width   int
	height  int
}

// NewBaseComponent creates a new base component.
func NewBaseComponent(title string) *BaseComponent {
	return &BaseComponent{
		title: title,
	}
}

// Init initializes the component.
func (c *BaseComponent) Init() tea.Cmd {
	return nil
}

// Update handles size and focus messages.
func (c *BaseComponent) Update(msg tea.Msg) (Component, tea.Cmd) {
	c.HandleCommon(msg)
	return c, nil
}

// HandleCommon applies size and focus messages and reports whether msg was
// one of them. Embedding components call it from their own Update.
func (c *BaseComponent) HandleCommon(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
	case FocusMsg:
		c.focused = true
	case BlurMsg:
		c.focused = false
	default:
		return false
	}
	return true
}

// View renders the title inside a frame.
func (c *BaseComponent) View() string {
	if c.width == 0 || c.height == 0 {
		return ""
	}
	return Frame(CenterText(c.title, c.width-2, c.height-2, ColorMuted), c.width, c.height, c.focused)
}

// Title returns the component title.
func (c *BaseComponent) Title() string {
	return c.title
}

// Focused returns true if focused.
func (c *BaseComponent) Focused() bool {
	return c.focused
}

// Focus sets the component as focused.
func (c *BaseComponent) Focus() {
	c.focused = true
}

// Blur removes focus.
func (c *BaseComponent) Blur() {
	c.focused = false
}

// SetSize sets dimensions.
func (c *BaseComponent) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// Width returns the width.
func (c *BaseComponent) Width() int {
	return c.width
}

// Height returns the height.
func (c *BaseComponent) Height() int {
	return c.height
}

// ComponentList manages a list of components with focus cycling.
type ComponentList struct {
	components []Component
	focusIndex int
}

// NewComponentList creates a component list.
func NewComponentList(components ...Component) *ComponentList {
	return &ComponentList{
		components: components,
		focusIndex: -1,
	}
}

// Len returns the number of components.
func (cl *ComponentList) Len() int {
	return len(cl.components)
}

// Get returns a component by index.
func (cl *ComponentList) Get(index int) Component {
	if index < 0 || index >= len(cl.components) {
		return nil
	}
	return cl.components[index]
}

// Replace swaps the component at index, carrying focus over.
func (cl *ComponentList) Replace(index int, c Component) {
	if index < 0 || index >= len(cl.components) {
		return
	}
	if c == nil {
		return
	}
	cl.components[index] = c
	if index == cl.focusIndex {
		c.Focus()
	} else {
		c.Blur()
	}
}

// FocusNext cycles focus to the next component.
func (cl *ComponentList) FocusNext() {
	if len(cl.components) == 0 {
		return
	}
	cl.setFocus((cl.focusIndex + 1) % len(cl.components))
}

// FocusPrev cycles focus to the previous component.
func (cl *ComponentList) FocusPrev() {
	if len(cl.components) == 0 {
		return
	}
	prev := cl.focusIndex - 1
	if prev < 0 {
		prev = len(cl.components) - 1
	}
	cl.setFocus(prev)
}

// FocusIndex returns the current focus index.
func (cl *ComponentList) FocusIndex() int {
	return cl.focusIndex
}

// SetFocusIndex sets focus to a specific index.
func (cl *ComponentList) SetFocusIndex(index int) {
	if index < 0 || index >= len(cl.components) {
		return
	}
	cl.setFocus(index)
}

// Focused returns the currently focused component.
func (cl *ComponentList) Focused() Component {
	return cl.Get(cl.focusIndex)
}

func (cl *ComponentList) setFocus(index int) {
	if current := cl.Get(cl.focusIndex); current != nil {
		current.Blur()
	}
	cl.focusIndex = index
	if next := cl.Get(index); next != nil {
		next.Focus()
	}
}

// RenderTitle renders a title bar.
func RenderTitle(title string, width int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Bold(true)

	if focused {
		style = style.Foreground(ColorHighlight).Background(ColorAccent)
	} else {
		style = style.Foreground(ColorText).Background(ColorSubtle)
	}

	return style.Render(title)
}

// Frame wraps content in a rounded border of the given outer size. A zero
// height lets the frame grow with its content.
func Frame(content string, width, height int, focused bool) string {
	style := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder())
	if width > 2 {
		style = style.Width(width - 2)
	}
	if height > 2 {
		style = style.Height(height - 2)
	}

	if focused {
		style = style.BorderForeground(ColorAccent)
	} else {
		style = style.BorderForeground(ColorMuted)
	}

	return style.Render(content)
}

// CenterText renders text centered in a box.
func CenterText(text string, width, height int, color lipgloss.Color) string {
	style := lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(color)
	if width > 0 {
		style = style.Width(width)
	}
	if height > 0 {
		style = style.Height(height)
	}
	return style.Render(text)
}

// MethodStyle returns the badge style for an HTTP method.
func MethodStyle(method string) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch strings.ToUpper(method) {
	case "GET":
		return style.Background(lipgloss.Color("34")).Foreground(lipgloss.Color("255"))
	case "POST":
		return style.Background(lipgloss.Color("214")).Foreground(lipgloss.Color("0"))
	case "PUT":
		return style.Background(lipgloss.Color("33")).Foreground(lipgloss.Color("255"))
	case "PATCH":
		return style.Background(lipgloss.Color("141")).Foreground(lipgloss.Color("255"))
	case "DELETE":
		return style.Background(lipgloss.Color("160")).Foreground(lipgloss.Color("255"))
	default:
		return style.Background(ColorMuted)
	}
}

// Truncate shortens s to fit within width cells.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
