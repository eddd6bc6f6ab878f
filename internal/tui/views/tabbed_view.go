package views

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/artpar/reqtabs/internal/core"
	"github.com/artpar/reqtabs/internal/store"
	"github.com/artpar/reqtabs/internal/tui"
	"github.com/artpar/reqtabs/internal/tui/components"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Pane is the focused half of the active tab.
type Pane int

const (
	PaneRequest Pane = iota
	PaneResponse
)

func (p Pane) String() string {
	if p == PaneResponse {
		return "Response"
	}
	return "Request"
}

// minResponseHeight keeps the response slot drawable on tiny terminals.
const minResponseHeight = 3

// notifyDuration is how long a status bar notification stays up.
const notifyDuration = 2 * time.Second

// clearNotificationMsg is sent to clear the notification.
type clearNotificationMsg struct{}

// TabbedRequestView renders the open tabs, the request editor of the
// active tab and its response slot. It never changes tab state itself: it
// reads snapshots given to SetState and dispatches intents.
type TabbedRequestView struct {
	width  int
	height int

	state      store.State
	hasState   bool
	dispatcher store.Dispatcher

	keys   tui.KeyMap
	coord  *Coordinator
	focus  Pane
	panes  *tui.ComponentList
	logger *slog.Logger

	editors    map[string]RequestEditor
	viewers    map[string]ResponseViewer
	records    map[string]*core.Record
	visibility map[string]Visibility

	newEditor EditorFactory
	newViewer ViewerFactory

	loading  *components.LoadingPanel
	errPanel *components.ErrorPanel
	empty    *components.EmptyPlaceholder

	switcher     *tabSwitcher
	showHelp     bool
	notification string
	copyText     func(string) error
}

// Option configures the view.
type Option func(*TabbedRequestView)

// WithKeyMap overrides the default bindings.
func WithKeyMap(km tui.KeyMap) Option {
	return func(v *TabbedRequestView) {
		v.keys = km
	}
}

// WithChrome sets the rows reserved outside the editor and response slot.
func WithChrome(rows int) Option {
	return func(v *TabbedRequestView) {
		v.coord = NewCoordinator(rows)
	}
}

// WithEditorFactory overrides how editors are built.
func WithEditorFactory(f EditorFactory) Option {
	return func(v *TabbedRequestView) {
		v.newEditor = f
	}
}

// WithViewerFactory overrides how viewers are built.
func WithViewerFactory(f ViewerFactory) Option {
	return func(v *TabbedRequestView) {
		v.newViewer = f
	}
}

// WithClipboard overrides the clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(v *TabbedRequestView) {
		v.copyText = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *TabbedRequestView) {
		v.logger = logger
	}
}

// NewTabbedRequestView creates the view. Intents go to d.
func NewTabbedRequestView(d store.Dispatcher, opts ...Option) *TabbedRequestView {
	v := &TabbedRequestView{
		dispatcher: d,
		keys:       tui.DefaultKeyMap(),
		coord:      NewCoordinator(DefaultChrome),
		focus:      PaneRequest,
		logger:     slog.Default(),
		editors:    make(map[string]RequestEditor),
		viewers:    make(map[string]ResponseViewer),
		records:    make(map[string]*core.Record),
		visibility: make(map[string]Visibility),
		loading:    components.NewLoadingPanel(),
		errPanel:   components.NewErrorPanel(),
		empty:      components.NewEmptyPlaceholder(),
		copyText:   clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.newEditor == nil {
		v.newEditor = defaultEditorFactory(v.keys)
	}
	if v.newViewer == nil {
		v.newViewer = defaultViewerFactory(v.keys)
	}
	return v
}

// Init starts the loading spinner.
func (v *TabbedRequestView) Init() tea.Cmd {
	return v.loading.Init()
}

// SetState replaces the snapshot and brings per-tab children in line
// with it.
func (v *TabbedRequestView) SetState(state store.State) {
	v.state = state
	v.hasState = true

	open := make(map[string]bool, len(state.Tabs))
	for _, tab := range state.Tabs {
		key := tab.Key()
		open[key] = true

		ed := v.editorFor(key)
		if v.records[key] != tab.Record {
			v.records[key] = tab.Record
			ed.SetRecord(tab.Record.Clone())
		}
		ed.SetRunning(tab.IsRequesting)

		if outcome, ok := state.Outcome(key); ok && outcome.Result != nil {
			v.viewerFor(key).SetResult(outcome.Result)
		}
	}

	for key := range v.editors {
		if !open[key] {
			v.forget(key)
		}
	}

	v.layout()
}

func (v *TabbedRequestView) forget(key string) {
	delete(v.editors, key)
	delete(v.viewers, key)
	delete(v.records, key)
	delete(v.visibility, key)
	v.coord.Forget(key)
}

func (v *TabbedRequestView) editorFor(key string) RequestEditor {
	if ed, ok := v.editors[key]; ok {
		return ed
	}
	ed := v.newEditor(EditorHooks{
		OnChange: func(rec *core.Record) tea.Cmd {
			return v.dispatch(store.UpdateRecord{Record: rec})
		},
		OnSend: func(rec *core.Record) tea.Cmd {
			return v.dispatch(store.SendRequest{Record: rec})
		},
		OnResize: func(height int) {
			v.reportEditorHeight(key, height)
		},
	})
	v.editors[key] = ed
	ed.SetHidden(v.visibility[key].EditorHidden())
	if v.width > 0 {
		ed.SetSize(v.width, 0)
	}
	return ed
}

func (v *TabbedRequestView) viewerFor(key string) ResponseViewer {
	if viewer, ok := v.viewers[key]; ok {
		return viewer
	}
	viewer := v.newViewer(func(dir components.Direction) tea.Cmd {
		v.setVisibility(key, visibilityFor(dir))
		return nil
	})
	v.viewers[key] = viewer
	viewer.SetMaximized(v.visibility[key].EditorHidden())
	viewer.SetSize(v.width, v.responseHeight(key))
	return viewer
}

func (v *TabbedRequestView) reportEditorHeight(key string, height int) {
	if !v.coord.Report(key, v.height, v.height > 0, height) {
		return
	}
	if viewer, ok := v.viewers[key]; ok {
		viewer.SetHeight(v.responseHeight(key))
	}
}

func (v *TabbedRequestView) setVisibility(key string, vis Visibility) {
	v.visibility[key] = vis
	if ed, ok := v.editors[key]; ok {
		ed.SetHidden(vis.EditorHidden())
	}
	if viewer, ok := v.viewers[key]; ok {
		viewer.SetMaximized(vis.EditorHidden())
	}
	if vis.EditorHidden() && v.focus == PaneRequest {
		v.focus = PaneResponse
	}
	v.layout()
}

// responseHeight is the outer height of the response slot of key. A
// hidden editor gives its rows to the response.
func (v *TabbedRequestView) responseHeight(key string) int {
	h := v.height - v.coord.Chrome()
	if !v.visibility[key].EditorHidden() {
		if cached, ok := v.coord.Height(key); ok {
			h = cached
		}
	}
	if h < minResponseHeight {
		h = minResponseHeight
	}
	return h
}

// layout sizes the response slot of the active tab and applies focus.
func (v *TabbedRequestView) layout() {
	if !v.hasState {
		return
	}
	tab, err := ResolveActive(v.state)
	if err != nil {
		return
	}
	key := tab.Key()
	h := v.responseHeight(key)

	v.loading.SetSize(v.width, h)
	v.errPanel.SetSize(v.width, h)
	v.empty.SetSize(v.width, h)
	if viewer, ok := v.viewers[key]; ok {
		viewer.SetSize(v.width, h)
	}

	ed := v.editorFor(key)
	if ed.Hidden() && v.focus == PaneRequest {
		v.focus = PaneResponse
	}
	for other, e := range v.editors {
		if other != key {
			e.Blur()
		}
	}

	// Only the unfocused pane is blurred: blurring the editor ends an
	// edit in progress.
	v.panes = tui.NewComponentList(ed, v.slotComponent(tab))
	for i := 0; i < v.panes.Len(); i++ {
		if i != int(v.focus) {
			v.panes.Get(i).Blur()
		}
	}
	v.panes.SetFocusIndex(int(v.focus))
}

// slotComponent returns the component for the tab's response slot.
func (v *TabbedRequestView) slotComponent(tab store.TabState) tui.Component {
	outcome, ok := v.state.Outcome(tab.Key())
	switch SelectSlot(tab, outcome, ok) {
	case SlotLoading:
		return v.loading
	case SlotError:
		v.errPanel.SetError(outcome.Err)
		return v.errPanel
	case SlotViewer:
		return v.viewerFor(tab.Key())
	default:
		return v.empty
	}
}

func (v *TabbedRequestView) dispatch(i store.Intent) tea.Cmd {
	if v.dispatcher == nil {
		return nil
	}
	return v.dispatcher.Dispatch(i)
}

// Apply performs a tab bar operation.
func (v *TabbedRequestView) Apply(op TabOp, key string) tea.Cmd {
	intent, ok := tabIntent(v.state, op, key)
	if !ok {
		v.logger.Debug("tab operation ignored", "op", op.String(), "key", key)
		return nil
	}
	return v.dispatch(intent)
}

// Update handles messages.
func (v *TabbedRequestView) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetSize(msg.Width, msg.Height)

	case spinner.TickMsg:
		_, cmd = v.loading.Update(msg)

	case components.CopyMsg:
		cmd = v.handleCopy(msg.Content)

	case tui.NotifyMsg:
		cmd = v.notify(msg.Message, msg.IsError)

	case clearNotificationMsg:
		v.notification = ""

	case tea.KeyMsg:
		cmd = v.handleKeyMsg(msg)

	default:
		if v.hasState {
			if tab, err := ResolveActive(v.state); err == nil {
				_, cmd = v.editorFor(tab.Key()).Update(msg)
			}
		}
	}

	v.layout()
	return v, cmd
}

func (v *TabbedRequestView) handleCopy(content string) tea.Cmd {
	if err := v.copyText(content); err != nil {
		v.logger.Warn("clipboard write failed", "error", err)
		return v.notify("✗ Copy failed", true)
	}
	size := len(content)
	if size > 1024 {
		return v.notify(fmt.Sprintf("✓ Copied %.1fKB", float64(size)/1024), false)
	}
	return v.notify(fmt.Sprintf("✓ Copied %dB", size), false)
}

func (v *TabbedRequestView) notify(message string, isError bool) tea.Cmd {
	if isError && !strings.HasPrefix(message, "✗") {
		message = "✗ " + message
	}
	v.notification = message
	return tea.Tick(notifyDuration, func(time.Time) tea.Msg {
		return clearNotificationMsg{}
	})
}

func (v *TabbedRequestView) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	if v.showHelp {
		if key.Matches(msg, v.keys.Cancel) || key.Matches(msg, v.keys.Help) {
			v.showHelp = false
		}
		return nil
	}

	if !v.hasState {
		return nil
	}

	if v.switcher != nil {
		result, cmd := v.switcher.Update(msg)
		switch result {
		case switcherPicked:
			picked := v.switcher.Selected()
			v.switcher = nil
			return v.Apply(TabSelect, picked)
		case switcherCancelled:
			v.switcher = nil
		}
		return cmd
	}

	active := mustResolveActive(v.state)
	ed := v.editorFor(active.Key())

	// While the URL is being edited every key belongs to the editor.
	if ed.IsEditing() {
		_, cmd := ed.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	case key.Matches(msg, v.keys.Help):
		v.showHelp = true
		return nil
	case key.Matches(msg, v.keys.NewTab):
		return v.Apply(TabAdd, "")
	case key.Matches(msg, v.keys.CloseTab):
		return v.Apply(TabRemove, active.Key())
	case key.Matches(msg, v.keys.NextTab):
		return v.Apply(TabSelect, neighborKey(v.state, 1))
	case key.Matches(msg, v.keys.PrevTab):
		return v.Apply(TabSelect, neighborKey(v.state, -1))
	case key.Matches(msg, v.keys.JumpTab):
		idx, _ := tui.TabIndex(msg)
		return v.Apply(TabSelect, keyAt(v.state, idx))
	case key.Matches(msg, v.keys.Switcher):
		v.switcher = newTabSwitcher(v.state.Tabs, v.keys)
		return textinput.Blink
	case key.Matches(msg, v.keys.NextPane):
		v.togglePane(active.Key())
		return nil
	case key.Matches(msg, v.keys.FocusRequest):
		if !ed.Hidden() {
			v.focus = PaneRequest
		}
		return nil
	case key.Matches(msg, v.keys.FocusResponse):
		v.focus = PaneResponse
		return nil
	}

	v.layout()
	if focused := v.panes.Focused(); focused != nil {
		_, cmd := focused.Update(msg)
		return cmd
	}
	return nil
}

func (v *TabbedRequestView) togglePane(key string) {
	if v.focus == PaneRequest {
		v.focus = PaneResponse
		return
	}
	if !v.visibility[key].EditorHidden() {
		v.focus = PaneRequest
	}
}

// View renders the view.
func (v *TabbedRequestView) View() string {
	if v.width == 0 || v.height == 0 || !v.hasState {
		return ""
	}
	if v.showHelp {
		return v.renderHelp()
	}

	active := mustResolveActive(v.state)
	key := active.Key()

	parts := []string{renderTabBar(v.state, v.width)}
	if v.switcher != nil {
		body := v.height - v.coord.Chrome()
		if body < minResponseHeight {
			body = minResponseHeight
		}
		parts = append(parts, v.switcher.View(v.width, body))
	} else {
		if editor := v.editorFor(key).View(); editor != "" {
			parts = append(parts, editor)
		}
		parts = append(parts, v.slotComponent(active).View())
	}
	parts = append(parts, v.renderHelpBar(), v.renderStatusBar(active))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *TabbedRequestView) renderHelpBar() string {
	var bindings []key.Binding
	switch {
	case v.switcher != nil:
		bindings = []key.Binding{v.keys.Commit, v.keys.Cancel}
	case v.isEditing():
		bindings = []key.Binding{v.keys.Commit, v.keys.Cancel}
	case v.focus == PaneRequest:
		bindings = []key.Binding{v.keys.EditURL, v.keys.CycleMethod, v.keys.Send, v.keys.NextSection, v.keys.CopyCurl}
	default:
		bindings = []key.Binding{v.keys.ScrollDown, v.keys.Maximize, v.keys.Copy}
	}
	bindings = append(bindings,
		v.keys.NewTab,
		v.keys.CloseTab,
		v.keys.NextTab,
		v.keys.Switcher,
		v.keys.Help,
		v.keys.Quit,
	)
	return tui.RenderHints(bindings, v.width)
}

func (v *TabbedRequestView) renderStatusBar(active store.TabState) string {
	var items []string

	modeStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)
	mode := v.Mode()
	if mode == tui.ModeNormal {
		modeStyle = modeStyle.
			Background(lipgloss.Color("34")).
			Foreground(lipgloss.Color("255"))
	} else {
		modeStyle = modeStyle.
			Background(tui.ColorWarn).
			Foreground(lipgloss.Color("0"))
	}
	items = append(items, modeStyle.Render(mode.String()))

	paneStyle := lipgloss.NewStyle().
		Foreground(tui.ColorText).
		Padding(0, 1)
	items = append(items, paneStyle.Render(v.focus.String()))

	if v.state.Environment != "" {
		envStyle := lipgloss.NewStyle().
			Background(tui.ColorAccent).
			Foreground(tui.ColorHighlight).
			Padding(0, 1).
			Bold(true)
		items = append(items, envStyle.Render("ENV: "+v.state.Environment))
	} else {
		envStyle := lipgloss.NewStyle().
			Background(tui.ColorMuted).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)
		items = append(items, envStyle.Render("No Environment"))
	}

	if v.notification != "" {
		notifyStyle := lipgloss.NewStyle().
			Foreground(tui.ColorSuccess).
			Bold(true).
			Padding(0, 1)
		if strings.HasPrefix(v.notification, "✗") {
			notifyStyle = notifyStyle.Foreground(lipgloss.Color("160"))
		}
		items = append(items, notifyStyle.Render(v.notification))
	}

	position := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Padding(0, 1).
		Render(fmt.Sprintf("tab %d/%d", v.state.IndexOf(active.Key())+1, len(v.state.Tabs)))

	left := strings.Join(items, " ")
	spacer := v.width - lipgloss.Width(left) - lipgloss.Width(position)
	if spacer < 0 {
		spacer = 0
	}

	barStyle := lipgloss.NewStyle().
		Width(v.width).
		MaxHeight(1).
		Background(lipgloss.Color("236"))

	return barStyle.Render(left + strings.Repeat(" ", spacer) + position)
}

func (v *TabbedRequestView) renderHelp() string {
	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Tabs", []key.Binding{v.keys.NewTab, v.keys.CloseTab, v.keys.NextTab, v.keys.PrevTab, v.keys.JumpTab, v.keys.Switcher}},
		{"Panes", []key.Binding{v.keys.NextPane, v.keys.FocusRequest}},
		{"Request", []key.Binding{v.keys.EditURL, v.keys.CycleMethod, v.keys.Send, v.keys.NextSection, v.keys.CopyCurl}},
		{"Response", []key.Binding{v.keys.ScrollDown, v.keys.Maximize, v.keys.Copy}},
		{"General", []key.Binding{v.keys.Help, v.keys.Quit}},
	}

	keyStyle := lipgloss.NewStyle().Foreground(tui.ColorWarn).Width(12)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(tui.ColorHighlight)

	var lines []string
	for _, s := range sections {
		lines = append(lines, titleStyle.Render(s.title))
		for _, b := range s.bindings {
			h := b.Help()
			lines = append(lines, "  "+keyStyle.Render(h.Key)+h.Desc)
		}
		lines = append(lines, "")
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(tui.ColorMuted).Render("Press ? or Esc to close"))

	box := tui.Frame(strings.Join(lines, "\n"), 48, 0, true)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, box)
}

func (v *TabbedRequestView) isEditing() bool {
	if !v.hasState {
		return false
	}
	tab, err := ResolveActive(v.state)
	if err != nil {
		return false
	}
	ed, ok := v.editors[tab.Key()]
	return ok && ed.IsEditing()
}

// Mode returns the current input mode.
func (v *TabbedRequestView) Mode() tui.Mode {
	switch {
	case v.switcher != nil:
		return tui.ModeSearch
	case v.isEditing():
		return tui.ModeInsert
	default:
		return tui.ModeNormal
	}
}

// Title returns the view title.
func (v *TabbedRequestView) Title() string {
	return "reqtabs"
}

// Focused returns true; the view is always focused.
func (v *TabbedRequestView) Focused() bool {
	return true
}

// Focus sets focus.
func (v *TabbedRequestView) Focus() {}

// Blur removes focus.
func (v *TabbedRequestView) Blur() {}

// SetSize sets dimensions and re-reports every editor's height against
// the new container.
func (v *TabbedRequestView) SetSize(width, height int) {
	v.width = width
	v.height = height
	for key, ed := range v.editors {
		ed.SetSize(width, 0)
		v.reportEditorHeight(key, ed.MeasuredHeight())
	}
	for key, viewer := range v.viewers {
		viewer.SetSize(width, v.responseHeight(key))
	}
	v.layout()
}

// Width returns the width.
func (v *TabbedRequestView) Width() int {
	return v.width
}

// Height returns the height.
func (v *TabbedRequestView) Height() int {
	return v.height
}

// FocusedPane returns the focused pane.
func (v *TabbedRequestView) FocusedPane() Pane {
	return v.focus
}

// Visibility returns the editor visibility of key.
func (v *TabbedRequestView) Visibility(key string) Visibility {
	return v.visibility[key]
}

// ResponseHeight returns the response slot height of key.
func (v *TabbedRequestView) ResponseHeight(key string) int {
	return v.responseHeight(key)
}

// ActiveSlot returns what the response slot of the active tab shows.
func (v *TabbedRequestView) ActiveSlot() Slot {
	tab := mustResolveActive(v.state)
	outcome, ok := v.state.Outcome(tab.Key())
	return SelectSlot(tab, outcome, ok)
}

// Editor returns the editor of key, if open.
func (v *TabbedRequestView) Editor(key string) (RequestEditor, bool) {
	ed, ok := v.editors[key]
	return ed, ok
}

// Viewer returns the viewer of key, if created.
func (v *TabbedRequestView) Viewer(key string) (ResponseViewer, bool) {
	viewer, ok := v.viewers[key]
	return viewer, ok
}

// Notification returns the current notification message.
func (v *TabbedRequestView) Notification() string {
	return v.notification
}

// ShowingHelp returns true if help is showing.
func (v *TabbedRequestView) ShowingHelp() bool {
	return v.showHelp
}

// SwitcherOpen reports whether the tab switcher is open.
func (v *TabbedRequestView) SwitcherOpen() bool {
	return v.switcher != nil
}
