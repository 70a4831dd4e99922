package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Key             string     `json:"key"`
	Notes           int        `json:"notes"`
	ActiveID        string     `json:"active_id,omitempty"`
	Writes          int        `json:"writes"`
	LastPersist     *time.Time `json:"last_persist,omitempty"`
	Listeners       int        `json:"listeners"`
	Watchers        int        `json:"watchers"`
	EventBufferSize int        `json:"event_buffer_size"`
	StorageType     string     `json:"storage_type"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storageType := "unknown"
	if s.kv != nil {
		storageType = "kv"
		if comp, ok := s.kv.(introspection.Component); ok {
			storageType = comp.ComponentType()
		}
	}

	return StoreState{
		Key:             s.key,
		Notes:           len(s.state.Notes),
		ActiveID:        s.state.ActiveID,
		Writes:          s.writes,
		LastPersist:     s.lastPersist,
		Listeners:       len(s.listeners),
		Watchers:        len(s.watchers),
		EventBufferSize: s.eventBufferSize,
		StorageType:     storageType,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
