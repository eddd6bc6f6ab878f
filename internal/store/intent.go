package store

import (
	"github.com/artpar/reqtabs/internal/core"
	tea "github.com/charmbracelet/bubbletea"
)

// Intent is a request to change the store. Dispatching is fire-and-forget:
// the caller observes the effect on the next snapshot.
type Intent interface {
	intent()
}

// AddTab opens a fresh default tab and activates it.
type AddTab struct{}

// RemoveTab closes the tab with Key.
type RemoveTab struct {
	Key string
}

// ActivateTab makes Key the visible tab.
type ActivateTab struct {
	Key string
}

// SendRequest runs Record. An empty Environment means the store's
// current environment.
type SendRequest struct {
	Record      *core.Record
	Environment string
}

// UpdateRecord replaces the stored record with the same id.
type UpdateRecord struct {
	Record *core.Record
}

func (AddTab) intent()       {}
func (RemoveTab) intent()    {}
func (ActivateTab) intent()  {}
func (SendRequest) intent()  {}
func (UpdateRecord) intent() {}

// Dispatcher accepts intents. The returned command, if any, must be handed
// to the bubbletea runtime.
type Dispatcher interface {
	Dispatch(Intent) tea.Cmd
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(Intent) tea.Cmd

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(i Intent) tea.Cmd {
	return f(i)
}

// RunCompletedMsg carries the result of a run back onto the event loop.
type RunCompletedMsg struct {
	Key      string
	Response *core.Response
	Err      error
}
