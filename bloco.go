package bloco

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/bloco/internal/platform"
	"github.com/aretw0/bloco/pkg/core"
)

// --- Types ---

// Store is the note store returned by New and Open.
type Store = core.Store

// Note is a single note.
type Note = core.Note

// --- Configuration ---

// Option defines a functional option for configuring bloco.
type Option = platform.Option

// Adapter names.
const (
	AdapterFS     = platform.AdapterFS
	AdapterSQLite = platform.AdapterSQLite
	AdapterMemory = platform.AdapterMemory
)

// ErrUnknownAdapter is returned when WithAdapter names an unknown adapter.
var ErrUnknownAdapter = platform.ErrUnknownAdapter

// WithLogger sets the logger for the store and its adapter.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithKV allows injecting a custom storage.
func WithKV(kv core.KV) Option {
	return platform.WithKV(kv)
}

// WithAdapter allows specifying the storage adapter to use by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithKey sets the key the collection is stored under.
func WithKey(key string) Option {
	return platform.WithKey(key)
}

// WithEventBuffer allows specifying the size of Watch channels.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithClock replaces time.Now for the store.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithMustExist ensures the storage location must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithWatcherErrorHandler registers a callback for errors in the fs watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a store without loading it.
func New(uri string, opts ...Option) (*Store, error) {
	return platform.New(uri, opts...)
}

// Open creates and loads a store.
func Open(ctx context.Context, uri string, opts ...Option) (*Store, error) {
	return platform.Open(ctx, uri, opts...)
}

// Init prepares the storage explicitly and returns it.
func Init(uri string, opts ...Option) (core.KV, error) {
	return platform.Init(uri, opts...)
}

// --- Safety & Utils ---

// ResolveStorePath determines the actual storage path based on safety rules.
func ResolveStorePath(userPath string, forceTemp bool) string {
	return platform.ResolveStorePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards for a project-local notebook.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// DefaultStorePath returns the storage location used when none is configured.
func DefaultStorePath() string {
	return platform.DefaultStorePath()
}
