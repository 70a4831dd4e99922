package core

import "fmt"

// EventType names the store operation that produced an Event.
type EventType string

const (
	EventLoad   EventType = "load"
	EventReload EventType = "reload"
	EventCreate EventType = "create"
	EventRename EventType = "rename"
	EventDelete EventType = "delete"
	EventSelect EventType = "select"
	EventSave   EventType = "save"
)

// Event is emitted after a committed mutation.
type Event struct {
	Type     EventType
	NoteID   string
	Snapshot Snapshot
}

// RefreshEditor reports whether consumers should repopulate editor fields.
// Autosave commits only refresh the list, so an in-progress cursor is not disturbed.
func (e Event) RefreshEditor() bool {
	return e.Type != EventSave
}

// String implements fmt.Stringer (and lifecycle.Event).
func (e Event) String() string {
	if e.NoteID == "" {
		return fmt.Sprintf("%s (%d notes)", e.Type, len(e.Snapshot.Notes))
	}
	return fmt.Sprintf("%s %s (%d notes)", e.Type, e.NoteID, len(e.Snapshot.Notes))
}

// Listener receives events synchronously, after the store lock is released.
type Listener func(Event)
