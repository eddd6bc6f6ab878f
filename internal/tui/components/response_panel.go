package components

import (
	"fmt"
	"strings"

	"github.com/artpar/reqtabs/internal/core"
	"github.com/artpar/reqtabs/internal/tui"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Direction is the maximize toggle emitted by the response panel.
type Direction int

const (
	// DirectionUp grows the response over the request editor.
	DirectionUp Direction = iota
	// DirectionDown restores the request editor.
	DirectionDown
)

func (d Direction) String() string {
	if d == DirectionUp {
		return "up"
	}
	return "down"
}

// CopyMsg is sent when content should be copied.
type CopyMsg struct {
	Content string
}

// responseChrome is title + status line + separator + border.
const responseChrome = 5

// ResponsePanel shows the status line and a scrollable view of one
// response.
type ResponsePanel struct {
	title     string
	focused   bool
	width     int
	height    int
	response  *core.Response
	viewport  viewport.Model
	maximized bool
	keys      tui.KeyMap
	onToggle  func(Direction) tea.Cmd
}

// ResponsePanelOption configures a ResponsePanel.
type ResponsePanelOption func(*ResponsePanel)

// WithToggleHandler is called when the user maximizes or restores the
// panel.
func WithToggleHandler(fn func(Direction) tea.Cmd) ResponsePanelOption {
	return func(p *ResponsePanel) {
		p.onToggle = fn
	}
}

// WithResponseKeyMap overrides the default bindings.
func WithResponseKeyMap(km tui.KeyMap) ResponsePanelOption {
	return func(p *ResponsePanel) {
		p.keys = km
	}
}

// NewResponsePanel creates a new response panel.
func NewResponsePanel(opts ...ResponsePanelOption) *ResponsePanel {
	p := &ResponsePanel{
		title:    "Response",
		viewport: viewport.New(0, 0),
		keys:     tui.DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init initializes the component.
func (p *ResponsePanel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (p *ResponsePanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)
		return p, nil

	case tui.FocusMsg:
		p.focused = true
		return p, nil

	case tui.BlurMsg:
		p.focused = false
		return p, nil

	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		return p.handleKeyMsg(msg)
	}

	return p, nil
}

func (p *ResponsePanel) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	switch {
	case key.Matches(msg, p.keys.Maximize):
		p.maximized = !p.maximized
		if p.onToggle == nil {
			return p, nil
		}
		dir := DirectionDown
		if p.maximized {
			dir = DirectionUp
		}
		return p, p.onToggle(dir)

	case key.Matches(msg, p.keys.Copy):
		if p.response == nil {
			return p, func() tea.Msg {
				return tui.NotifyMsg{Message: "No response to copy", IsError: true}
			}
		}
		content := p.response.Body().String()
		return p, func() tea.Msg {
			return CopyMsg{Content: content}
		}

	case key.Matches(msg, p.keys.ScrollDown):
		p.viewport.LineDown(1)
	case key.Matches(msg, p.keys.ScrollUp):
		p.viewport.LineUp(1)
	case key.Matches(msg, p.keys.PageDown):
		p.viewport.HalfViewDown()
	case key.Matches(msg, p.keys.PageUp):
		p.viewport.HalfViewUp()
	}

	return p, nil
}

// View renders the component.
func (p *ResponsePanel) View() string {
	if p.width == 0 || p.height == 0 {
		return ""
	}

	innerWidth := p.width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}

	title := tui.RenderTitle(p.title, innerWidth, p.focused)
	if p.response == nil {
		empty := tui.CenterText("No response", innerWidth, p.height-3, tui.ColorMuted)
		return tui.Frame(title+"\n"+empty, p.width, p.height, p.focused)
	}

	separator := lipgloss.NewStyle().
		Foreground(tui.ColorSubtle).
		Render(strings.Repeat("─", innerWidth))

	content := title + "\n" + p.renderStatusLine() + "\n" + separator + "\n" + p.viewport.View()
	return tui.Frame(content, p.width, p.height, p.focused)
}

func (p *ResponsePanel) renderStatusLine() string {
	status := p.response.Status()
	timing := p.response.Timing()

	statusStr := statusStyle(status.Code()).Render(fmt.Sprintf("%d", status.Code()))

	text := strings.TrimSpace(strings.TrimPrefix(status.Text(), fmt.Sprintf("%d", status.Code())))

	timeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Background(tui.ColorSubtle).
		Padding(0, 1)
	timeStr := timeStyle.Render(fmt.Sprintf("%dms", timing.Total.Milliseconds()))

	sizeStr := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render(formatSize(p.response.Body().Size()))

	line := fmt.Sprintf("%s %s  %s  %s", statusStr, text, timeStr, sizeStr)
	if p.maximized {
		line += lipgloss.NewStyle().Foreground(tui.ColorMuted).Render("  [max]")
	}
	return line
}

func statusStyle(code int) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch {
	case code >= 200 && code < 300:
		return style.Background(lipgloss.Color("34")).Foreground(lipgloss.Color("255"))
	case code >= 300 && code < 400:
		return style.Background(lipgloss.Color("214")).Foreground(lipgloss.Color("0"))
	case code >= 400 && code < 500:
		return style.Background(lipgloss.Color("208")).Foreground(lipgloss.Color("255"))
	case code >= 500:
		return style.Background(lipgloss.Color("160")).Foreground(lipgloss.Color("255"))
	default:
		return style.Background(tui.ColorMuted)
	}
}

func formatSize(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	} else if bytes < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%.1fMB", float64(bytes)/(1024*1024))
}

func (p *ResponsePanel) content() string {
	if p.response == nil {
		return ""
	}

	var b strings.Builder
	headers := p.response.Headers()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	for _, k := range headers.Keys() {
		b.WriteString(keyStyle.Render(k+":") + " " + headers.Get(k) + "\n")
	}
	if headers.Len() > 0 {
		b.WriteString("\n")
	}

	body := p.response.Body()
	if body.IsEmpty() {
		b.WriteString(lipgloss.NewStyle().Foreground(tui.ColorMuted).Render("(empty body)"))
	} else {
		b.WriteString(body.String())
	}
	return b.String()
}

func (p *ResponsePanel) resizeViewport() {
	w := p.width - 2
	if w < 1 {
		w = 1
	}
	h := p.height - responseChrome
	if h < 1 {
		h = 1
	}
	p.viewport.Width = w
	p.viewport.Height = h
}

// Title returns the component title.
func (p *ResponsePanel) Title() string {
	if p.response != nil {
		status := p.response.Status()
		return fmt.Sprintf("Response: %d", status.Code())
	}
	return p.title
}

// Focused returns true if focused.
func (p *ResponsePanel) Focused() bool {
	return p.focused
}

// Focus sets the component as focused.
func (p *ResponsePanel) Focus() {
	p.focused = true
}

// Blur removes focus.
func (p *ResponsePanel) Blur() {
	p.focused = false
}

// SetSize sets dimensions.
func (p *ResponsePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.resizeViewport()
}

// SetHeight sets the outer height, keeping the width.
func (p *ResponsePanel) SetHeight(height int) {
	p.SetSize(p.width, height)
}

// Width returns the width.
func (p *ResponsePanel) Width() int {
	return p.width
}

// Height returns the height.
func (p *ResponsePanel) Height() int {
	return p.height
}

// Response returns the current response.
func (p *ResponsePanel) Response() *core.Response {
	return p.response
}

// SetResult sets the response to display. A different response scrolls
// back to the top.
func (p *ResponsePanel) SetResult(resp *core.Response) {
	if resp == p.response {
		return
	}
	p.response = resp
	p.viewport.SetContent(p.content())
	p.viewport.GotoTop()
}

// Maximized reports whether the panel is maximized.
func (p *ResponsePanel) Maximized() bool {
	return p.maximized
}

// SetMaximized syncs the toggle state without emitting a direction.
func (p *ResponsePanel) SetMaximized(maximized bool) {
	p.maximized = maximized
}

// ScrollOffset returns the first visible line.
func (p *ResponsePanel) ScrollOffset() int {
	return p.viewport.YOffset
}
