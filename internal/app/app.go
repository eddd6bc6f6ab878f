// Package app holds the root bubbletea model that ties the tab store to
// the tabbed request view.
package app

import (
	"fmt"
	"log/slog"

	"github.com/artpar/reqtabs/internal/store"
	"github.com/artpar/reqtabs/internal/tui/views"
	tea "github.com/charmbracelet/bubbletea"
)

// Model owns the store and hands every new snapshot to the view.
type Model struct {
	store    *store.Store
	view     *views.TabbedRequestView
	logger   *slog.Logger
	viewOpts []views.Option
}

// Option is a function that configures the Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithViewOptions passes options through to the tabbed view.
func WithViewOptions(opts ...views.Option) Option {
	return func(m *Model) {
		m.viewOpts = append(m.viewOpts, opts...)
	}
}

// New creates the root model over s.
func New(s *store.Store, opts ...Option) *Model {
	m := &Model{
		store:  s,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	viewOpts := append([]views.Option{views.WithLogger(m.logger)}, m.viewOpts...)
	m.view = views.NewTabbedRequestView(s, viewOpts...)
	m.view.SetState(s.Snapshot())
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.view.Init()
}

// Update lets the store reduce the message, runs it through the view and
// then syncs the view with the resulting snapshot.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.store.Update(msg) {
		m.logger.Debug("store updated", "msg", fmt.Sprintf("%T", msg))
	}

	_, cmd := m.view.Update(msg)
	m.view.SetState(m.store.Snapshot())
	return m, cmd
}

// View renders the model.
func (m *Model) View() string {
	return m.view.View()
}

// Store returns the tab store.
func (m *Model) Store() *store.Store {
	return m.store
}

// TabView returns the tabbed request view.
func (m *Model) TabView() *views.TabbedRequestView {
	return m.view
}
