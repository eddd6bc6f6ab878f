// Package store owns the open tabs, the active tab and the outcome of each
// tab's last run. Views read immutable State snapshots and change it only
// by dispatching intents.
package store

import (
	"github.com/artpar/reqtabs/internal/core"
)

// TabState is the runtime state of one open tab.
type TabState struct {
	Record       *core.Record
	Name         string
	IsRequesting bool
}

// Key returns the tab's identifier, which is its record id.
func (t TabState) Key() string {
	return t.Record.ID()
}

// Outcome is the stored result of a tab's most recent completed run:
// either a response or an error.
type Outcome struct {
	Result *core.Response
	Err    error
}

// IsError reports whether the run failed.
func (o Outcome) IsError() bool {
	return o.Err != nil
}

// State is a snapshot of the store. Records are shared with the store and
// must be cloned before editing.
type State struct {
	ActiveKey   string
	Tabs        []TabState
	Responses   map[string]Outcome
	Environment string
}

// Tab returns the tab with the given key.
func (s State) Tab(key string) (TabState, bool) {
	for _, tab := range s.Tabs {
		if tab.Key() == key {
			return tab, true
		}
	}
	return TabState{}, false
}

// HasTab reports whether key names an open tab.
func (s State) HasTab(key string) bool {
	_, ok := s.Tab(key)
	return ok
}

// Outcome returns the stored outcome for key, if any.
func (s State) Outcome(key string) (Outcome, bool) {
	o, ok := s.Responses[key]
	return o, ok
}

// IndexOf returns the position of key in Tabs, or -1.
func (s State) IndexOf(key string) int {
	for i, tab := range s.Tabs {
		if tab.Key() == key {
			return i
		}
	}
	return -1
}
