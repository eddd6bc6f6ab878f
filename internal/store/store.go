package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/artpar/reqtabs/internal/core"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTabName is the name given to freshly opened tabs.
const DefaultTabName = "New Request"

// ErrUnknownEnvironment is stored as a tab's outcome when a run names an
// environment that was never loaded.
var ErrUnknownEnvironment = errors.New("unknown environment")

// ErrNoExecutor is stored as an outcome when the store cannot run requests.
var ErrNoExecutor = errors.New("no executor configured")

// Executor runs a record and returns its response.
type Executor interface {
	Execute(ctx context.Context, rec *core.Record, env *core.Environment) (*core.Response, error)
}

// Store is the tab store. It is not safe for concurrent use; all calls
// happen on the bubbletea event loop.
type Store struct {
	tabs      []TabState
	active    string
	responses map[string]Outcome

	envs    map[string]*core.Environment
	envName string

	exec    Executor
	ctx     context.Context
	logger  *slog.Logger
	created int
}

// Option configures the Store.
type Option func(*Store)

// WithRecords opens the given records as the initial tabs.
func WithRecords(records ...*core.Record) Option {
	return func(s *Store) {
		for _, rec := range records {
			s.tabs = append(s.tabs, TabState{Record: rec, Name: rec.Name()})
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithContext sets the parent context of every run.
func WithContext(ctx context.Context) Option {
	return func(s *Store) {
		s.ctx = ctx
	}
}

// New creates a store. Without seeded records it opens one default tab.
func New(exec Executor, opts ...Option) *Store {
	s := &Store{
		responses: make(map[string]Outcome),
		envs:      make(map[string]*core.Environment),
		exec:      exec,
		ctx:       context.Background(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.tabs) == 0 {
		s.tabs = append(s.tabs, s.newDefaultTab())
	}
	s.active = s.tabs[0].Key()
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	tabs := make([]TabState, len(s.tabs))
	copy(tabs, s.tabs)

	responses := make(map[string]Outcome, len(s.responses))
	for k, v := range s.responses {
		responses[k] = v
	}

	return State{
		ActiveKey:   s.active,
		Tabs:        tabs,
		Responses:   responses,
		Environment: s.envName,
	}
}

// SetEnvironments replaces the known environments.
func (s *Store) SetEnvironments(envs []*core.Environment) {
	s.envs = make(map[string]*core.Environment, len(envs))
	for _, env := range envs {
		s.envs[env.Name()] = env
	}
	if _, ok := s.envs[s.envName]; !ok {
		s.envName = ""
	}
}

// UseEnvironment selects the environment applied to runs that do not name
// one. An empty name selects none.
func (s *Store) UseEnvironment(name string) error {
	if name != "" {
		if _, ok := s.envs[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
		}
	}
	s.envName = name
	return nil
}

// Environment returns the current environment, or nil.
func (s *Store) Environment() *core.Environment {
	return s.envs[s.envName]
}

// Dispatch applies an intent. Only SendRequest returns a command.
func (s *Store) Dispatch(i Intent) tea.Cmd {
	switch i := i.(type) {
	case AddTab:
		s.addTab()
	case RemoveTab:
		s.removeTab(i.Key)
	case ActivateTab:
		if s.index(i.Key) >= 0 {
			s.active = i.Key
		}
	case UpdateRecord:
		s.updateRecord(i.Record)
	case SendRequest:
		return s.sendRequest(i)
	default:
		s.logger.Warn("ignoring unknown intent", "intent", fmt.Sprintf("%T", i))
	}
	return nil
}

// Update reduces messages produced by store commands. It reports whether
// msg belonged to the store.
func (s *Store) Update(msg tea.Msg) bool {
	done, ok := msg.(RunCompletedMsg)
	if !ok {
		return false
	}

	idx := s.index(done.Key)
	if idx < 0 {
		s.logger.Debug("dropping result for closed tab", "key", done.Key)
		return true
	}

	s.tabs[idx].IsRequesting = false
	s.responses[done.Key] = Outcome{Result: done.Response, Err: done.Err}
	return true
}

func (s *Store) addTab() {
	tab := s.newDefaultTab()
	s.tabs = append(s.tabs, tab)
	s.active = tab.Key()
}

func (s *Store) removeTab(key string) {
	idx := s.index(key)
	if idx < 0 {
		return
	}

	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)
	delete(s.responses, key)

	if len(s.tabs) == 0 {
		s.tabs = append(s.tabs, s.newDefaultTab())
		s.active = s.tabs[0].Key()
		return
	}
	if s.active == key {
		if idx >= len(s.tabs) {
			idx = len(s.tabs) - 1
		}
		s.active = s.tabs[idx].Key()
	}
}

func (s *Store) updateRecord(rec *core.Record) {
	if rec == nil {
		return
	}
	idx := s.index(rec.ID())
	if idx < 0 {
		return
	}
	s.tabs[idx].Record = rec
	s.tabs[idx].Name = rec.Name()
}

func (s *Store) sendRequest(i SendRequest) tea.Cmd {
	if i.Record == nil {
		return nil
	}
	key := i.Record.ID()
	idx := s.index(key)
	if idx < 0 || s.tabs[idx].IsRequesting {
		return nil
	}
	s.updateRecord(i.Record)

	env, err := s.resolveEnvironment(i.Environment)
	if err != nil {
		s.responses[key] = Outcome{Err: err}
		return nil
	}
	if s.exec == nil {
		s.responses[key] = Outcome{Err: ErrNoExecutor}
		return nil
	}

	s.tabs[idx].IsRequesting = true
	rec := i.Record.Clone()
	ctx := s.ctx
	exec := s.exec
	s.logger.Debug("run started", "key", key, "environment", i.Environment)

	return func() tea.Msg {
		resp, err := exec.Execute(ctx, rec, env)
		return RunCompletedMsg{Key: key, Response: resp, Err: err}
	}
}

func (s *Store) resolveEnvironment(name string) (*core.Environment, error) {
	if name == "" {
		return s.envs[s.envName], nil
	}
	env, ok := s.envs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
	}
	return env, nil
}

func (s *Store) newDefaultTab() TabState {
	s.created++
	name := DefaultTabName
	if s.created > 1 {
		name = fmt.Sprintf("%s %d", DefaultTabName, s.created)
	}
	rec := core.NewRecord(name, "GET", "")
	return TabState{Record: rec, Name: name}
}

func (s *Store) index(key string) int {
	for i, tab := range s.tabs {
		if tab.Key() == key {
			return i
		}
	}
	return -1
}
