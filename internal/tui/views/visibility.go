package views

import "github.com/artpar/reqtabs/internal/tui/components"

// Visibility is the per-tab state of the request editor.
type Visibility int

const (
	// VisibilityUnset is the default and shows the editor.
	VisibilityUnset Visibility = iota
	VisibilityShown
	VisibilityHidden
)

// EditorHidden reports whether the editor is hidden.
func (v Visibility) EditorHidden() bool {
	return v == VisibilityHidden
}

// visibilityFor maps a viewer toggle to the editor state: maximizing the
// response hides the editor, restoring shows it.
func visibilityFor(dir components.Direction) Visibility {
	if dir == components.DirectionUp {
		return VisibilityHidden
	}
	return VisibilityShown
}
