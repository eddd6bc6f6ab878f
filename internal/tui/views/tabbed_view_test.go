package views

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/artpar/reqtabs/internal/core"
	"github.com/artpar/reqtabs/internal/logging"
	"github.com/artpar/reqtabs/internal/store"
	"github.com/artpar/reqtabs/internal/tui"
	"github.com/artpar/reqtabs/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEditor reports whatever height the test tells it to.
type fakeEditor struct {
	*tui.BaseComponent
	hooks    EditorHooks
	record   *core.Record
	running  bool
	hidden   bool
	measured int
}

func (e *fakeEditor) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEnter {
		return e, e.hooks.OnSend(e.record)
	}
	return e, nil
}

func (e *fakeEditor) View() string {
	if e.hidden || e.measured == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("editor\n", e.measured), "\n")
}

func (e *fakeEditor) SetRecord(rec *core.Record) { e.record = rec }
func (e *fakeEditor) SetRunning(running bool)    { e.running = running }
func (e *fakeEditor) SetHidden(hidden bool)      { e.hidden = hidden }
func (e *fakeEditor) Hidden() bool               { return e.hidden }
func (e *fakeEditor) IsEditing() bool            { return false }
func (e *fakeEditor) MeasuredHeight() int        { return e.measured }

func (e *fakeEditor) resize(h int) {
	e.measured = h
	e.hooks.OnResize(h)
}

type fakeExecutor struct {
	resp *core.Response
	err  error
}

func (f *fakeExecutor) Execute(ctx context.Context, rec *core.Record, env *core.Environment) (*core.Response, error) {
	return f.resp, f.err
}

type harness struct {
	t       *testing.T
	store   *store.Store
	view    *TabbedRequestView
	editors map[*fakeEditor]bool
	copied  []string
}

func (h *harness) sync() {
	h.view.SetState(h.store.Snapshot())
}

// press sends a key through the view the way the root model does: view
// first, then snapshot.
func (h *harness) press(msg tea.KeyMsg) tea.Cmd {
	_, cmd := h.view.Update(msg)
	h.sync()
	return cmd
}

// deliver runs cmd and feeds its message back through store and view.
func (h *harness) deliver(cmd tea.Cmd) {
	h.t.Helper()
	require.NotNil(h.t, cmd)
	msg := cmd()
	h.store.Update(msg)
	h.view.Update(msg)
	h.sync()
}

func (h *harness) editor(key string) *fakeEditor {
	h.t.Helper()
	ed, ok := h.view.Editor(key)
	require.True(h.t, ok)
	return ed.(*fakeEditor)
}

func newHarness(t *testing.T, exec store.Executor, opts []Option, recs ...*core.Record) *harness {
	t.Helper()
	h := &harness{t: t, editors: make(map[*fakeEditor]bool)}
	h.store = store.New(exec, store.WithRecords(recs...), store.WithLogger(logging.NewNopLogger()))

	base := []Option{
		WithLogger(logging.NewNopLogger()),
		WithClipboard(func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		}),
	}
	h.view = NewTabbedRequestView(h.store, append(base, opts...)...)
	h.sync()
	return h
}

func withFakeEditors() Option {
	return WithEditorFactory(func(hooks EditorHooks) RequestEditor {
		return &fakeEditor{BaseComponent: tui.NewBaseComponent("fake"), hooks: hooks}
	})
}

func okResult(body string) *core.Response {
	return core.NewResponse("req", core.NewStatus(200, "200 OK")).
		WithBody(core.NewRawBody([]byte(body), "text/plain"))
}

func twoRecords() (*core.Record, *core.Record) {
	return core.NewRecord("Alpha", "GET", "http://a.test"), core.NewRecord("Beta", "GET", "http://b.test")
}

func TestTabbedRequestView_EndToEnd(t *testing.T) {
	a, b := twoRecords()
	exec := &fakeExecutor{resp: okResult("hello")}
	h := newHarness(t, exec, []Option{WithChrome(100), withFakeEditors()}, a, b)
	h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 500})

	h.editor(a.ID()).resize(150)
	assert.Equal(t, 250, h.view.ResponseHeight(a.ID()))
	assert.Equal(t, SlotEmpty, h.view.ActiveSlot())
	assert.Contains(t, h.view.View(), components.EmptyPlaceholderText)

	// Run on A.
	cmd := h.press(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SlotLoading, h.view.ActiveSlot())
	assert.Contains(t, h.view.View(), "Sending request...")
	assert.True(t, h.editor(a.ID()).running)

	// Result lands.
	h.deliver(cmd)
	assert.Equal(t, SlotViewer, h.view.ActiveSlot())
	assert.False(t, h.editor(a.ID()).running)
	viewer, ok := h.view.Viewer(a.ID())
	require.True(t, ok)
	assert.Equal(t, 250, viewer.Height())
	assert.Contains(t, h.view.View(), "hello")

	// Switch to B: B shows its own empty state.
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	assert.Equal(t, b.ID(), h.store.Snapshot().ActiveKey)
	assert.Equal(t, SlotEmpty, h.view.ActiveSlot())
	assert.Contains(t, h.view.View(), components.EmptyPlaceholderText)

	// And back to A which still has its result.
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	assert.Equal(t, SlotViewer, h.view.ActiveSlot())
}

func TestTabbedRequestView_Errors(t *testing.T) {
	a, _ := twoRecords()
	exec := &fakeExecutor{err: errors.New("dial tcp: connection refused")}
	h := newHarness(t, exec, nil, a)
	h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	cmd := h.press(tea.KeyMsg{Type: tea.KeyEnter})
	h.deliver(cmd)

	assert.Equal(t, SlotError, h.view.ActiveSlot())
	assert.Contains(t, h.view.View(), "connection refused")
}

func TestTabbedRequestView_Layout(t *testing.T) {
	t.Run("fills the terminal exactly", func(t *testing.T) {
		a, _ := twoRecords()
		h := newHarness(t, &fakeExecutor{resp: okResult("x")}, nil, a)
		h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

		assert.Equal(t, 30, lipgloss.Height(h.view.View()))

		h.deliver(h.press(tea.KeyMsg{Type: tea.KeyEnter}))
		assert.Equal(t, SlotViewer, h.view.ActiveSlot())
		assert.Equal(t, 30, lipgloss.Height(h.view.View()))
	})

	t.Run("editor growth shrinks the response", func(t *testing.T) {
		a, _ := twoRecords()
		h := newHarness(t, nil, nil, a)
		h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
		before := h.view.ResponseHeight(a.ID())

		rec := a.Clone()
		rec.SetHeader("X-One", "1")
		rec.SetHeader("X-Two", "2")
		h.store.Dispatch(store.UpdateRecord{Record: rec})
		h.sync()

		assert.Equal(t, before-1, h.view.ResponseHeight(a.ID()))
		assert.Equal(t, 40, lipgloss.Height(h.view.View()))
	})

	t.Run("no size renders nothing", func(t *testing.T) {
		a, _ := twoRecords()
		h := newHarness(t, nil, nil, a)
		assert.Empty(t, h.view.View())
	})

	t.Run("resizing the terminal re-reports editor heights", func(t *testing.T) {
		a, _ := twoRecords()
		h := newHarness(t, nil, []Option{WithChrome(4), withFakeEditors()}, a)
		h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
		h.editor(a.ID()).resize(10)
		assert.Equal(t, 26, h.view.ResponseHeight(a.ID()))

		h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 50})
		assert.Equal(t, 36, h.view.ResponseHeight(a.ID()))
	})
}

func TestTabbedRequestView_Visibility(t *testing.T) {
	a, b := twoRecords()
	h := newHarness(t, &fakeExecutor{resp: okResult("body")}, nil, a, b)
	h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	h.deliver(h.press(tea.KeyMsg{Type: tea.KeyEnter}))

	withEditor := h.view.ResponseHeight(a.ID())
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	assert.Equal(t, PaneResponse, h.view.FocusedPane())

	// Maximize.
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	assert.Equal(t, VisibilityHidden, h.view.Visibility(a.ID()))
	ed, _ := h.view.Editor(a.ID())
	assert.True(t, ed.Hidden())
	assert.NotContains(t, h.view.View(), "Request: Alpha")
	assert.Equal(t, 40-DefaultChrome, h.view.ResponseHeight(a.ID()))
	assert.Equal(t, 40, lipgloss.Height(h.view.View()))

	// The other tab is untouched.
	assert.Equal(t, VisibilityUnset, h.view.Visibility(b.ID()))
	edB, _ := h.view.Editor(b.ID())
	assert.False(t, edB.Hidden())

	// Focusing the hidden editor is refused.
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	assert.Equal(t, PaneResponse, h.view.FocusedPane())

	// Restore.
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	assert.Equal(t, VisibilityShown, h.view.Visibility(a.ID()))
	assert.False(t, ed.Hidden())
	assert.Contains(t, h.view.View(), "Request: Alpha")
	assert.Equal(t, withEditor, h.view.ResponseHeight(a.ID()))
}

func TestTabbedRequestView_TabKeys(t *testing.T) {
	t.Run("ctrl+t adds and activates", func(t *testing.T) {
		a, b := twoRecords()
		h := newHarness(t, nil, nil, a, b)

		h.press(tea.KeyMsg{Type: tea.KeyCtrlT})

		state := h.store.Snapshot()
		require.Len(t, state.Tabs, 3)
		assert.Equal(t, state.Tabs[2].Key(), state.ActiveKey)
	})

	t.Run("ctrl+w closes active and prunes its children", func(t *testing.T) {
		a, b := twoRecords()
		h := newHarness(t, nil, nil, a, b)

		h.press(tea.KeyMsg{Type: tea.KeyCtrlW})

		assert.Equal(t, b.ID(), h.store.Snapshot().ActiveKey)
		_, ok := h.view.Editor(a.ID())
		assert.False(t, ok)
	})

	t.Run("alt+N jumps and out of range is ignored", func(t *testing.T) {
		a, b := twoRecords()
		h := newHarness(t, nil, nil, a, b)

		h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2"), Alt: true})
		assert.Equal(t, b.ID(), h.store.Snapshot().ActiveKey)

		h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9"), Alt: true})
		assert.Equal(t, b.ID(), h.store.Snapshot().ActiveKey)
	})

	t.Run("ctrl+p switches by name", func(t *testing.T) {
		a, b := twoRecords()
		h := newHarness(t, nil, nil, a, b)
		h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

		h.press(tea.KeyMsg{Type: tea.KeyCtrlP})
		require.True(t, h.view.SwitcherOpen())
		assert.Equal(t, tui.ModeSearch, h.view.Mode())
		assert.Contains(t, h.view.View(), "Switch tab")

		for _, r := range "bet" {
			h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
		h.press(tea.KeyMsg{Type: tea.KeyEnter})

		assert.False(t, h.view.SwitcherOpen())
		assert.Equal(t, b.ID(), h.store.Snapshot().ActiveKey)
	})

	t.Run("switcher escape keeps active tab", func(t *testing.T) {
		a, b := twoRecords()
		h := newHarness(t, nil, nil, a, b)

		h.press(tea.KeyMsg{Type: tea.KeyCtrlP})
		h.press(tea.KeyMsg{Type: tea.KeyEsc})

		assert.False(t, h.view.SwitcherOpen())
		assert.Equal(t, a.ID(), h.store.Snapshot().ActiveKey)
	})

	t.Run("stale select dispatches nothing", func(t *testing.T) {
		a, _ := twoRecords()
		var got []store.Intent
		v := NewTabbedRequestView(store.DispatcherFunc(func(i store.Intent) tea.Cmd {
			got = append(got, i)
			return nil
		}), WithLogger(logging.NewNopLogger()))
		v.SetState(stateWith(a.ID(), a))

		assert.Nil(t, v.Apply(TabSelect, "stale"))
		assert.Empty(t, got)

		v.Apply(TabSelect, a.ID())
		v.Apply(TabAdd, "")
		v.Apply(TabRemove, a.ID())
		assert.Equal(t, []store.Intent{
			store.ActivateTab{Key: a.ID()},
			store.AddTab{},
			store.RemoveTab{Key: a.ID()},
		}, got)
	})
}

func TestTabbedRequestView_EditorIntents(t *testing.T) {
	a, _ := twoRecords()
	var got []store.Intent
	v := NewTabbedRequestView(store.DispatcherFunc(func(i store.Intent) tea.Cmd {
		got = append(got, i)
		return nil
	}), WithLogger(logging.NewNopLogger()))
	v.SetState(stateWith(a.ID(), a))
	v.SetSize(80, 30)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, got, 2)
	update, ok := got[0].(store.UpdateRecord)
	require.True(t, ok)
	assert.Equal(t, "POST", update.Record.Method())
	assert.Equal(t, a.ID(), update.Record.ID())

	send, ok := got[1].(store.SendRequest)
	require.True(t, ok)
	assert.Equal(t, a.ID(), send.Record.ID())
	assert.Equal(t, "", send.Environment)
	assert.Equal(t, "GET", a.Method(), "store record is never mutated by the view")
}

func TestTabbedRequestView_URLEditing(t *testing.T) {
	a, _ := twoRecords()
	h := newHarness(t, nil, nil, a)
	h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	assert.Equal(t, tui.ModeInsert, h.view.Mode())

	// q types instead of quitting while editing.
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Equal(t, tui.ModeInsert, h.view.Mode())
	h.press(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, tui.ModeNormal, h.view.Mode())
	tab, _ := h.store.Snapshot().Tab(a.ID())
	assert.Equal(t, "http://a.testq", tab.Record.URL())
}

func TestTabbedRequestView_PasteCurl(t *testing.T) {
	a, _ := twoRecords()
	var got []store.Intent
	v := NewTabbedRequestView(store.DispatcherFunc(func(i store.Intent) tea.Cmd {
		got = append(got, i)
		return nil
	}), WithLogger(logging.NewNopLogger()))
	v.SetState(stateWith(a.ID(), a))
	v.SetSize(80, 30)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.Equal(t, tui.ModeInsert, v.Mode())

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("curl -X POST -d x http://h/p"), Paste: true})
	assert.Equal(t, tui.ModeInsert, v.Mode(), "pasting keeps the edit open")
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, tui.ModeNormal, v.Mode())
	require.Len(t, got, 1)
	update, ok := got[0].(store.UpdateRecord)
	require.True(t, ok)
	assert.Equal(t, "POST", update.Record.Method())
	assert.Equal(t, "http://h/p", update.Record.URL())
	assert.Equal(t, "x", update.Record.Body())
	assert.Equal(t, a.ID(), update.Record.ID())
	assert.Equal(t, "Alpha", update.Record.Name())
}

func TestTabbedRequestView_EditSurvivesStateSync(t *testing.T) {
	a, b := twoRecords()
	h := newHarness(t, nil, nil, a, b)
	h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	h.sync()
	h.view.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	assert.Equal(t, tui.ModeInsert, h.view.Mode())

	t.Run("selecting another tab ends the edit", func(t *testing.T) {
		h.view.Apply(TabSelect, b.ID())
		h.sync()
		assert.Equal(t, tui.ModeNormal, h.view.Mode())

		ed, ok := h.view.Editor(a.ID())
		require.True(t, ok)
		assert.False(t, ed.IsEditing())
	})
}

func TestTabbedRequestView_Copy(t *testing.T) {
	a, _ := twoRecords()
	h := newHarness(t, &fakeExecutor{resp: okResult("payload")}, nil, a)
	h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	h.deliver(h.press(tea.KeyMsg{Type: tea.KeyEnter}))
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})

	cmd := h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	h.view.Update(cmd())

	assert.Equal(t, []string{"payload"}, h.copied)
	assert.Equal(t, "✓ Copied 7B", h.view.Notification())
	assert.Contains(t, h.view.View(), "Copied 7B")

	h.view.Update(clearNotificationMsg{})
	assert.Empty(t, h.view.Notification())
}

func TestTabbedRequestView_CopyFailure(t *testing.T) {
	a, _ := twoRecords()
	v := NewTabbedRequestView(nil,
		WithLogger(logging.NewNopLogger()),
		WithClipboard(func(string) error { return errors.New("no clipboard") }),
	)
	v.SetState(stateWith(a.ID(), a))

	v.Update(components.CopyMsg{Content: "x"})
	assert.Equal(t, "✗ Copy failed", v.Notification())
}

func TestTabbedRequestView_Help(t *testing.T) {
	a, _ := twoRecords()
	h := newHarness(t, nil, nil, a)
	h.view.Update(tea.WindowSizeMsg{Width: 80, Height: 40})

	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, h.view.ShowingHelp())
	assert.Contains(t, h.view.View(), "new tab")

	h.press(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, h.view.ShowingHelp())
}

func TestTabbedRequestView_Quit(t *testing.T) {
	a, _ := twoRecords()
	h := newHarness(t, nil, nil, a)

	cmd := h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestTabbedRequestView_MissingActiveTabPanics(t *testing.T) {
	a, _ := twoRecords()
	v := NewTabbedRequestView(nil, WithLogger(logging.NewNopLogger()))
	v.SetState(stateWith("gone", a))
	v.SetSize(80, 30)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrActiveTabMissing)
	}()
	_ = v.View()
}

func TestTabbedRequestView_StatusBar(t *testing.T) {
	a, b := twoRecords()
	h := newHarness(t, nil, nil, a, b)
	h.store.SetEnvironments([]*core.Environment{core.NewEnvironment("dev")})
	require.NoError(t, h.store.UseEnvironment("dev"))
	h.sync()
	h.view.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := h.view.View()
	assert.Contains(t, view, "NORMAL")
	assert.Contains(t, view, "ENV: dev")
	assert.Contains(t, view, "tab 1/2")
}
