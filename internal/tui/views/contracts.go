package views

import (
	"github.com/artpar/reqtabs/internal/core"
	"github.com/artpar/reqtabs/internal/tui"
	"github.com/artpar/reqtabs/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
)

// RequestEditor edits the record of one tab.
type RequestEditor interface {
	tui.Component
	SetRecord(rec *core.Record)
	SetRunning(running bool)
	SetHidden(hidden bool)
	Hidden() bool
	IsEditing() bool
	MeasuredHeight() int
}

// ResponseViewer shows the result of one tab.
type ResponseViewer interface {
	tui.Component
	SetHeight(height int)
	SetResult(resp *core.Response)
	SetMaximized(maximized bool)
}

// EditorHooks are the callbacks the view hands to each editor.
type EditorHooks struct {
	OnChange func(*core.Record) tea.Cmd
	OnSend   func(*core.Record) tea.Cmd
	OnResize func(height int)
}

// EditorFactory builds the editor of a tab.
type EditorFactory func(hooks EditorHooks) RequestEditor

// ViewerFactory builds the viewer of a tab.
type ViewerFactory func(onToggle func(components.Direction) tea.Cmd) ResponseViewer

func defaultEditorFactory(km tui.KeyMap) EditorFactory {
	return func(hooks EditorHooks) RequestEditor {
		return components.NewRequestPanel(
			components.WithChangeHandler(hooks.OnChange),
			components.WithSendHandler(hooks.OnSend),
			components.WithResizeHandler(hooks.OnResize),
			components.WithRequestKeyMap(km),
		)
	}
}

func defaultViewerFactory(km tui.KeyMap) ViewerFactory {
	return func(onToggle func(components.Direction) tea.Cmd) ResponseViewer {
		return components.NewResponsePanel(
			components.WithToggleHandler(onToggle),
			components.WithResponseKeyMap(km),
		)
	}
}
