package views

import (
	"errors"
	"fmt"

	"github.com/artpar/reqtabs/internal/store"
)

// ErrActiveTabMissing means the active key names no open tab. The store
// guarantees it never happens, so seeing it is a bug.
var ErrActiveTabMissing = errors.New("active tab missing")

// ResolveActive returns the tab whose key is the active key.
func ResolveActive(state store.State) (store.TabState, error) {
	for _, tab := range state.Tabs {
		if tab.Key() == state.ActiveKey {
			return tab, nil
		}
	}
	return store.TabState{}, fmt.Errorf("%w: %q", ErrActiveTabMissing, state.ActiveKey)
}

func mustResolveActive(state store.State) store.TabState {
	tab, err := ResolveActive(state)
	if err != nil {
		panic(err)
	}
	return tab
}
