package components

import (
	"fmt"
	"strings"

	"github.com/artpar/reqtabs/internal/core"
	"github.com/artpar/reqtabs/internal/curl"
	"github.com/artpar/reqtabs/internal/tui"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Section is the detail section shown under the URL line.
type Section int

const (
	SectionHeaders Section = iota
	SectionQuery
	SectionBody
)

var sectionNames = []string{"Headers", "Query", "Body"}

// maxBodyLines caps how much of the body the editor shows.
const maxBodyLines = 8

// RequestPanel edits one record. It sizes itself to its content and
// reports its rendered height whenever that changes.
type RequestPanel struct {
	title    string
	focused  bool
	hidden   bool
	width    int
	height   int
	measured int

	record  *core.Record
	running bool
	section Section

	editing  bool
	urlInput textinput.Model
	keys     tui.KeyMap

	onChange func(*core.Record) tea.Cmd
	onSend   func(*core.Record) tea.Cmd
	onResize func(int)
}

// RequestPanelOption configures a RequestPanel.
type RequestPanelOption func(*RequestPanel)

// WithChangeHandler is called with a copy of the record after every
// committed edit.
func WithChangeHandler(fn func(*core.Record) tea.Cmd) RequestPanelOption {
	return func(p *RequestPanel) {
		p.onChange = fn
	}
}

// WithSendHandler is called when the user asks to run the record.
func WithSendHandler(fn func(*core.Record) tea.Cmd) RequestPanelOption {
	return func(p *RequestPanel) {
		p.onSend = fn
	}
}

// WithResizeHandler is called with the new rendered height.
func WithResizeHandler(fn func(height int)) RequestPanelOption {
	return func(p *RequestPanel) {
		p.onResize = fn
	}
}

// WithRequestKeyMap overrides the default bindings.
func WithRequestKeyMap(km tui.KeyMap) RequestPanelOption {
	return func(p *RequestPanel) {
		p.keys = km
	}
}

// NewRequestPanel creates a new request panel.
func NewRequestPanel(opts ...RequestPanelOption) *RequestPanel {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "https://"

	p := &RequestPanel{
		title:    "Request",
		section:  SectionHeaders,
		urlInput: input,
		keys:     tui.DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init initializes the component.
func (p *RequestPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (p *RequestPanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
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
		if !p.focused || p.hidden {
			return p, nil
		}
		if p.editing {
			return p.handleEditKey(msg)
		}
		return p.handleKeyMsg(msg)
	}

	if p.editing {
		var cmd tea.Cmd
		p.urlInput, cmd = p.urlInput.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *RequestPanel) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	if p.record == nil {
		return p, nil
	}

	switch {
	case key.Matches(msg, p.keys.EditURL):
		return p, p.StartURLEdit()

	case key.Matches(msg, p.keys.CycleMethod):
		rec := p.record.Clone()
		rec.NextMethod()
		return p, p.commit(rec)

	case key.Matches(msg, p.keys.Send):
		if p.running || p.onSend == nil {
			return p, nil
		}
		return p, p.onSend(p.record.Clone())

	case key.Matches(msg, p.keys.NextSection):
		p.section = Section((int(p.section) + 1) % len(sectionNames))
		p.remeasure()

	case key.Matches(msg, p.keys.CopyCurl):
		content := curl.Format(p.record, false)
		return p, func() tea.Msg {
			return CopyMsg{Content: content}
		}
	}

	return p, nil
}

func (p *RequestPanel) handleEditKey(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	switch {
	case key.Matches(msg, p.keys.Commit):
		p.stopEditing()
		value := strings.TrimSpace(p.urlInput.Value())
		rec := p.record.Clone()
		if curl.IsCommand(value) {
			// A pasted curl command replaces the whole request.
			if err := curl.Apply(rec, value); err != nil {
				p.remeasure()
				return p, func() tea.Msg {
					return tui.NotifyMsg{Message: err.Error(), IsError: true}
				}
			}
			return p, p.commit(rec)
		}
		for _, k := range rec.QueryKeys() {
			rec.RemoveQueryParam(k)
		}
		rec.SetURL(value)
		return p, p.commit(rec)

	case key.Matches(msg, p.keys.Cancel):
		p.stopEditing()
		p.remeasure()
		return p, nil
	}

	var cmd tea.Cmd
	p.urlInput, cmd = p.urlInput.Update(msg)
	return p, cmd
}

// StartURLEdit switches the URL line into a text input.
func (p *RequestPanel) StartURLEdit() tea.Cmd {
	if p.record == nil {
		return nil
	}
	p.editing = true
	p.urlInput.SetValue(p.record.FullURL())
	p.urlInput.CursorEnd()
	p.remeasure()
	return p.urlInput.Focus()
}

func (p *RequestPanel) stopEditing() {
	p.editing = false
	p.urlInput.Blur()
}

func (p *RequestPanel) commit(rec *core.Record) tea.Cmd {
	p.record = rec
	p.remeasure()
	if p.onChange == nil {
		return nil
	}
	return p.onChange(rec.Clone())
}

// remeasure renders the panel and reports a changed height.
func (p *RequestPanel) remeasure() {
	if p.hidden || p.width == 0 || p.record == nil {
		return
	}
	h := lipgloss.Height(p.render())
	if h == p.measured {
		return
	}
	p.measured = h
	if p.onResize != nil {
		p.onResize(h)
	}
}

// View renders the component.
func (p *RequestPanel) View() string {
	if p.hidden || p.width == 0 || p.record == nil {
		return ""
	}
	return p.render()
}

func (p *RequestPanel) render() string {
	innerWidth := p.width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}

	lines := []string{
		tui.RenderTitle(p.Title(), innerWidth, p.focused),
		p.renderURLLine(innerWidth),
		p.renderSectionBar(),
	}
	for _, line := range p.renderSection() {
		lines = append(lines, tui.Truncate(line, innerWidth))
	}

	return tui.Frame(strings.Join(lines, "\n"), p.width, 0, p.focused)
}

func (p *RequestPanel) renderURLLine(width int) string {
	method := p.record.Method()
	badge := tui.MethodStyle(method).Render(method)

	var url string
	if p.editing {
		p.urlInput.Width = width - lipgloss.Width(badge) - 2
		url = p.urlInput.View()
	} else {
		url = p.record.FullURL()
		if url == "" {
			url = lipgloss.NewStyle().Foreground(tui.ColorMuted).Render("no URL, press e to edit")
		}
	}

	suffix := ""
	if p.running {
		suffix = lipgloss.NewStyle().Foreground(tui.ColorWarn).Render(" sending")
	}

	room := width - lipgloss.Width(badge) - lipgloss.Width(suffix) - 1
	if !p.editing {
		url = tui.Truncate(url, room)
	}
	return badge + " " + url + suffix
}

func (p *RequestPanel) renderSectionBar() string {
	var parts []string
	for i, name := range sectionNames {
		style := lipgloss.NewStyle().Padding(0, 1)
		if Section(i) == p.section {
			style = style.Bold(true)
			if p.focused {
				style = style.Background(tui.ColorAccent).Foreground(tui.ColorHighlight)
			} else {
				style = style.Background(tui.ColorMuted)
			}
		}
		parts = append(parts, style.Render(name))
	}
	return strings.Join(parts, " ")
}

func (p *RequestPanel) renderSection() []string {
	switch p.section {
	case SectionHeaders:
		return renderPairs(p.record.HeaderKeys(), p.record.Headers(), "No headers defined")
	case SectionQuery:
		return renderPairs(p.record.QueryKeys(), p.record.QueryParams(), "No query parameters defined")
	case SectionBody:
		return p.renderBody()
	}
	return nil
}

func renderPairs(keys []string, values map[string]string, empty string) []string {
	if len(keys) == 0 {
		return []string{empty}
	}
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("  %s: %s", k, values[k]))
	}
	return lines
}

func (p *RequestPanel) renderBody() []string {
	body := p.record.Body()
	if body == "" {
		return []string{"No body defined"}
	}
	lines := strings.Split(body, "\n")
	if len(lines) > maxBodyLines {
		more := len(lines) - maxBodyLines
		lines = append(lines[:maxBodyLines], fmt.Sprintf("… %d more lines", more))
	}
	return lines
}

// Title returns the component title.
func (p *RequestPanel) Title() string {
	if p.record != nil && p.record.Name() != "" {
		return fmt.Sprintf("Request: %s", p.record.Name())
	}
	return p.title
}

// Focused returns true if focused.
func (p *RequestPanel) Focused() bool {
	return p.focused
}

// Focus sets the component as focused.
func (p *RequestPanel) Focus() {
	p.focused = true
}

// Blur removes focus.
func (p *RequestPanel) Blur() {
	p.focused = false
	if p.editing {
		p.stopEditing()
		p.remeasure()
	}
}

// SetSize sets dimensions. The height is advisory: the panel grows with
// its content.
func (p *RequestPanel) SetSize(width, height int) {
	p.height = height
	if width == p.width {
		return
	}
	p.width = width
	p.remeasure()
}

// Width returns the width.
func (p *RequestPanel) Width() int {
	return p.width
}

// Height returns the last measured height.
func (p *RequestPanel) Height() int {
	return p.measured
}

// MeasuredHeight returns the rendered height last reported.
func (p *RequestPanel) MeasuredHeight() int {
	return p.measured
}

// Record returns the record being edited.
func (p *RequestPanel) Record() *core.Record {
	return p.record
}

// SetRecord replaces the record. An in-progress URL edit is kept when the
// record is the same one.
func (p *RequestPanel) SetRecord(rec *core.Record) {
	if p.editing && (rec == nil || p.record == nil || rec.ID() != p.record.ID()) {
		p.stopEditing()
	}
	p.record = rec
	p.remeasure()
}

// SetRunning marks the record as running.
func (p *RequestPanel) SetRunning(running bool) {
	p.running = running
}

// Running reports whether the record is running.
func (p *RequestPanel) Running() bool {
	return p.running
}

// SetHidden hides the panel. A hidden panel renders nothing.
func (p *RequestPanel) SetHidden(hidden bool) {
	p.hidden = hidden
	if hidden && p.editing {
		p.stopEditing()
	}
	p.remeasure()
}

// Hidden reports whether the panel is hidden.
func (p *RequestPanel) Hidden() bool {
	return p.hidden
}

// IsEditing returns true while the URL input is active.
func (p *RequestPanel) IsEditing() bool {
	return p.editing
}

// Section returns the visible detail section.
func (p *RequestPanel) Section() Section {
	return p.section
}

// SetSection selects the visible detail section.
func (p *RequestPanel) SetSection(s Section) {
	if s < SectionHeaders || s > SectionBody {
		return
	}
	p.section = s
	p.remeasure()
}
