package core

import "context"

// KV is the durable byte store the note collection is persisted to.
// Keeping the contract this small lets the store stay independent of the
// underlying storage (files, SQLite, memory, a browser's localStorage).
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

// KeyEventType describes what happened to a key in a watched store.
type KeyEventType string

const (
	KeyWritten KeyEventType = "WRITTEN"
	KeyRemoved KeyEventType = "REMOVED"
)

// KeyEvent reports an external change to a stored key.
type KeyEvent struct {
	Type      KeyEventType
	Key       string
	Timestamp int64 // Unix timestamp
}

// Watchable is implemented by stores that can report changes made by other processes.
type Watchable interface {
	// Watch emits an event for every change to a key matching pattern.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan KeyEvent, error)
}

// String implements fmt.Stringer (and lifecycle.Event).
func (e KeyEvent) String() string {
	return string(e.Type) + " " + e.Key
}
