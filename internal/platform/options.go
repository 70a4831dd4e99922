package platform

import (
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/bloco/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
	AdapterMemory = "memory"
)

// options holds the internal configuration for a bloco store.
type options struct {
	kv           core.KV
	logger       *slog.Logger
	adapter      string
	key          string
	eventBuffer  int
	clock        func() time.Time
	mustExist    bool
	forceTemp    bool
	devSafety    bool
	perm         os.FileMode
	errorHandler func(error)
}

// Option defines a functional option for configuring bloco.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   AdapterFS,
		key:       core.DefaultKey,
		devSafety: true,
	}
}

func (o *options) storeOptions() []core.StoreOption {
	return []core.StoreOption{
		core.WithKey(o.key),
		core.WithLogger(o.logger),
		core.WithEventBuffer(o.eventBuffer),
		core.WithClock(o.clock),
	}
}

// WithLogger sets the logger for the store and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithKV allows injecting a custom storage (e.g. a mock).
// If provided, the named adapter is skipped.
func WithKV(kv core.KV) Option {
	return func(o *options) {
		o.kv = kv
	}
}

// WithAdapter allows specifying the storage adapter to use by name ("fs", "sqlite", "memory").
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithKey sets the key the collection is stored under.
func WithKey(key string) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithEventBuffer allows specifying the size of Watch channels.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithClock replaces time.Now for the store.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithMustExist ensures the storage directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) storage paths are re-rooted into a temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithFilePerm sets the permission of files written by the fs adapter.
func WithFilePerm(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithWatcherErrorHandler registers a callback for errors in the fs watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
