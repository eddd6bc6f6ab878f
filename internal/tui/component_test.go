package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseComponent(t *testing.T) {
	t.Run("creates with title", func(t *testing.T) {
		c := NewBaseComponent("Test Component")
		assert.Equal(t, "Test Component", c.Title())
	})

	t.Run("starts unfocused", func(t *testing.T) {
		c := NewBaseComponent("Test")
		assert.False(t, c.Focused())
	})

	t.Run("can be focused and blurred", func(t *testing.T) {
		c := NewBaseComponent("Test")
		c.Focus()
		assert.True(t, c.Focused())
		c.Blur()
		assert.False(t, c.Focused())
	})

	t.Run("tracks dimensions", func(t *testing.T) {
		c := NewBaseComponent("Test")
		c.SetSize(80, 24)
		assert.Equal(t, 80, c.Width())
		assert.Equal(t, 24, c.Height())
	})

	t.Run("renders nothing without size", func(t *testing.T) {
		c := NewBaseComponent("Test")
		assert.Empty(t, c.View())
	})

	t.Run("renders to its size", func(t *testing.T) {
		c := NewBaseComponent("Test")
		c.SetSize(30, 6)
		view := c.View()
		assert.Contains(t, view, "Test")
		assert.Equal(t, 6, lipgloss.Height(view))
		assert.Equal(t, 30, lipgloss.Width(view))
	})
}

func TestBaseComponent_Update(t *testing.T) {
	t.Run("handles window size message", func(t *testing.T) {
		c := NewBaseComponent("Test")

		updated, _ := c.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
		base := updated.(*BaseComponent)

		assert.Equal(t, 120, base.Width())
		assert.Equal(t, 40, base.Height())
	})

	t.Run("handles focus and blur messages", func(t *testing.T) {
		c := NewBaseComponent("Test")

		assert.True(t, c.HandleCommon(FocusMsg{}))
		assert.True(t, c.Focused())
		assert.True(t, c.HandleCommon(BlurMsg{}))
		assert.False(t, c.Focused())
	})

	t.Run("ignores other messages", func(t *testing.T) {
		c := NewBaseComponent("Test")
		assert.False(t, c.HandleCommon(tea.KeyMsg{Type: tea.KeyEnter}))
	})
}

func TestComponentList(t *testing.T) {
	t.Run("starts with no focus", func(t *testing.T) {
		cl := NewComponentList(NewBaseComponent("a"), NewBaseComponent("b"))
		assert.Equal(t, 2, cl.Len())
		assert.Equal(t, -1, cl.FocusIndex())
		assert.Nil(t, cl.Focused())
	})

	t.Run("cycles forward and back", func(t *testing.T) {
		a, b := NewBaseComponent("a"), NewBaseComponent("b")
		cl := NewComponentList(a, b)

		cl.FocusNext()
		assert.True(t, a.Focused())

		cl.FocusNext()
		assert.False(t, a.Focused())
		assert.True(t, b.Focused())

		cl.FocusNext()
		assert.True(t, a.Focused())

		cl.FocusPrev()
		assert.True(t, b.Focused())
	})

	t.Run("ignores out of range index", func(t *testing.T) {
		cl := NewComponentList(NewBaseComponent("a"))
		cl.SetFocusIndex(5)
		assert.Equal(t, -1, cl.FocusIndex())
		assert.Nil(t, cl.Get(-1))
	})

	t.Run("replace carries focus", func(t *testing.T) {
		a, b := NewBaseComponent("a"), NewBaseComponent("b")
		cl := NewComponentList(a, b)
		cl.SetFocusIndex(0)

		c := NewBaseComponent("c")
		cl.Replace(0, c)
		require.Same(t, c, cl.Focused())
		assert.True(t, c.Focused())

		d := NewBaseComponent("d")
		d.Focus()
		cl.Replace(1, d)
		assert.False(t, d.Focused())
	})

	t.Run("empty list is safe", func(t *testing.T) {
		cl := NewComponentList()
		cl.FocusNext()
		cl.FocusPrev()
		assert.Nil(t, cl.Focused())
	})
}

func TestFrame(t *testing.T) {
	t.Run("fixed size", func(t *testing.T) {
		out := Frame("hi", 20, 5, true)
		assert.Equal(t, 20, lipgloss.Width(out))
		assert.Equal(t, 5, lipgloss.Height(out))
	})

	t.Run("grows with content when height is zero", func(t *testing.T) {
		out := Frame("one\ntwo\nthree", 20, 0, false)
		assert.Equal(t, 5, lipgloss.Height(out))
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"ellipsis", "hello world", 8, "hello..."},
		{"tiny width", "hello", 2, "he"},
		{"zero width", "hello", 0, ""},
		{"multibyte", "héllo wörld", 7, "héll..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.width))
		})
	}
}

func TestRenderTitle(t *testing.T) {
	out := RenderTitle("Request", 20, true)
	assert.Contains(t, out, "Request")
	assert.Equal(t, 20, lipgloss.Width(out))
}
