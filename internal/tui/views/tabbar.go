package views

import (
	"strings"

	"github.com/artpar/reqtabs/internal/store"
	"github.com/artpar/reqtabs/internal/tui"
	"github.com/charmbracelet/lipgloss"
)

// TabOp is an operation on the tab bar.
type TabOp int

const (
	TabSelect TabOp = iota
	TabAdd
	TabRemove
)

func (op TabOp) String() string {
	switch op {
	case TabSelect:
		return "select"
	case TabAdd:
		return "add"
	case TabRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// maxTabLabel caps the width of one tab name.
const maxTabLabel = 24

// tabIntent maps a tab bar operation to a store intent. Selecting a key
// that is not open yields no intent.
func tabIntent(state store.State, op TabOp, key string) (store.Intent, bool) {
	switch op {
	case TabSelect:
		if !state.HasTab(key) {
			return nil, false
		}
		return store.ActivateTab{Key: key}, true
	case TabAdd:
		return store.AddTab{}, true
	case TabRemove:
		return store.RemoveTab{Key: key}, true
	}
	return nil, false
}

// neighborKey returns the key delta tabs away from the active one,
// wrapping around.
func neighborKey(state store.State, delta int) string {
	n := len(state.Tabs)
	if n == 0 {
		return ""
	}
	idx := state.IndexOf(state.ActiveKey)
	if idx < 0 {
		idx = 0
	}
	next := ((idx+delta)%n + n) % n
	return state.Tabs[next].Key()
}

// keyAt returns the key of the tab at index, or "" when out of range.
func keyAt(state store.State, index int) string {
	if index < 0 || index >= len(state.Tabs) {
		return ""
	}
	return state.Tabs[index].Key()
}

func tabLabel(tab store.TabState) string {
	name := tab.Name
	if name == "" {
		name = store.DefaultTabName
	}
	label := tui.Truncate(name, maxTabLabel)
	if tab.IsRequesting {
		label = "● " + label
	}
	return label + " ×"
}

// renderTabBar renders the tabs and an underline marking the active one.
// When the tabs do not fit, leading tabs are dropped until the active tab
// is visible.
func renderTabBar(state store.State, width int) string {
	activeColor := tui.ColorWarn

	tops := make([]string, len(state.Tabs))
	bottoms := make([]string, len(state.Tabs))
	active := state.IndexOf(state.ActiveKey)

	for i, tab := range state.Tabs {
		label := tabLabel(tab)
		w := lipgloss.Width(label) + 2
		if i == active {
			tops[i] = lipgloss.NewStyle().
				Foreground(activeColor).
				Bold(true).
				Padding(0, 1).
				Render(label)
			bottoms[i] = lipgloss.NewStyle().
				Foreground(activeColor).
				Render(strings.Repeat("━", w))
		} else {
			tops[i] = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 1).
				Render(label)
			bottoms[i] = strings.Repeat(" ", w)
		}
	}

	start := 0
	for start < active && lipgloss.Width(strings.Join(tops[start:active+1], " ")) > width {
		start++
	}

	topRow := strings.Join(tops[start:], " ")
	bottomRow := strings.Join(bottoms[start:], " ")
	if start > 0 {
		topRow = "‹" + topRow
		bottomRow = " " + bottomRow
	}
	if rest := width - lipgloss.Width(bottomRow); rest > 0 {
		bottomRow += lipgloss.NewStyle().
			Foreground(tui.ColorSubtle).
			Render(strings.Repeat("─", rest))
	}

	clip := lipgloss.NewStyle().MaxWidth(width)
	return clip.Render(topRow) + "\n" + clip.Render(bottomRow)
}
