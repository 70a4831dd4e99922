package core

import (
	"log/slog"
	"time"
)

const (
	// DefaultKey is the storage key the collection is written under.
	DefaultKey = "notes_v1"

	// DefaultEventBuffer is the per-subscriber buffer of Watch channels.
	DefaultEventBuffer = 100
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey sets the storage key. Empty keys are ignored.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces NewID.
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithEventBuffer sets the buffer size of channels returned by Watch.
// Zero means default (100).
func WithEventBuffer(size int) StoreOption {
	return func(s *Store) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}
