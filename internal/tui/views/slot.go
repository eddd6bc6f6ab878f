package views

import "github.com/artpar/reqtabs/internal/store"

// Slot is what the response area shows.
type Slot int

const (
	SlotEmpty Slot = iota
	SlotLoading
	SlotError
	SlotViewer
)

func (s Slot) String() string {
	switch s {
	case SlotLoading:
		return "loading"
	case SlotError:
		return "error"
	case SlotViewer:
		return "viewer"
	default:
		return "empty"
	}
}

// SelectSlot picks the response slot for a tab. A running tab always shows
// the loading indicator, even over an older outcome.
func SelectSlot(tab store.TabState, outcome store.Outcome, ok bool) Slot {
	switch {
	case tab.IsRequesting:
		return SlotLoading
	case ok && outcome.IsError():
		return SlotError
	case ok && outcome.Result != nil:
		return SlotViewer
	default:
		return SlotEmpty
	}
}
