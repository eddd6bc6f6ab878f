package views

import (
	"fmt"
	"strings"

	"github.com/artpar/reqtabs/internal/store"
	"github.com/artpar/reqtabs/internal/tui"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// tabSource adapts open tabs to fuzzy.Source.
type tabSource []store.TabState

func (s tabSource) String(i int) string { return s[i].Name }
func (s tabSource) Len() int            { return len(s) }

// switcherResult is what a key press in the switcher resolved to.
type switcherResult int

const (
	switcherPending switcherResult = iota
	switcherPicked
	switcherCancelled
)

var (
	switcherUp   = key.NewBinding(key.WithKeys("up", "ctrl+k"))
	switcherDown = key.NewBinding(key.WithKeys("down", "ctrl+j"))
)

// tabSwitcher is a fuzzy finder over tab names.
type tabSwitcher struct {
	input   textinput.Model
	tabs    tabSource
	matches []string
	labels  []string
	cursor  int
	keys    tui.KeyMap
}

func newTabSwitcher(tabs []store.TabState, keys tui.KeyMap) *tabSwitcher {
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "tab name"
	input.Focus()

	s := &tabSwitcher{
		input: input,
		tabs:  tabSource(tabs),
		keys:  keys,
	}
	s.filter()
	return s
}

// filter recomputes matches; an empty query lists every tab in order.
func (s *tabSwitcher) filter() {
	s.matches = s.matches[:0]
	s.labels = s.labels[:0]

	query := strings.TrimSpace(s.input.Value())
	if query == "" {
		for _, tab := range s.tabs {
			s.matches = append(s.matches, tab.Key())
			s.labels = append(s.labels, tab.Name)
		}
	} else {
		for _, m := range fuzzy.FindFrom(query, s.tabs) {
			s.matches = append(s.matches, s.tabs[m.Index].Key())
			s.labels = append(s.labels, highlight(m.Str, m.MatchedIndexes))
		}
	}
	if s.cursor >= len(s.matches) {
		s.cursor = len(s.matches) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func highlight(s string, idx []int) string {
	hit := make(map[int]bool, len(idx))
	for _, i := range idx {
		hit[i] = true
	}
	style := lipgloss.NewStyle().Foreground(tui.ColorWarn).Bold(true)

	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(style.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Update handles a key and reports whether a tab was picked.
func (s *tabSwitcher) Update(msg tea.KeyMsg) (switcherResult, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keys.Cancel):
		return switcherCancelled, nil
	case key.Matches(msg, s.keys.Commit):
		if len(s.matches) == 0 {
			return switcherPending, nil
		}
		return switcherPicked, nil
	case key.Matches(msg, switcherUp):
		if s.cursor > 0 {
			s.cursor--
		}
		return switcherPending, nil
	case key.Matches(msg, switcherDown):
		if s.cursor < len(s.matches)-1 {
			s.cursor++
		}
		return switcherPending, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.filter()
	return switcherPending, cmd
}

// Selected returns the key under the cursor.
func (s *tabSwitcher) Selected() string {
	if s.cursor < 0 || s.cursor >= len(s.matches) {
		return ""
	}
	return s.matches[s.cursor]
}

// View renders the switcher in a box of the given size.
func (s *tabSwitcher) View(width, height int) string {
	innerWidth := width - 2
	lines := []string{
		tui.RenderTitle("Switch tab", innerWidth, true),
		s.input.View(),
	}

	if len(s.matches) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(tui.ColorMuted).Render("  no matching tabs"))
	}
	room := height - 3 - len(lines)
	for i, label := range s.labels {
		if i >= room {
			lines = append(lines, fmt.Sprintf("  … %d more", len(s.labels)-i))
			break
		}
		prefix := "  "
		if i == s.cursor {
			prefix = "> "
		}
		lines = append(lines, prefix+label)
	}

	return tui.Frame(strings.Join(lines, "\n"), width, height, true)
}
