package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/bloco/pkg/adapters/fs"
	"github.com/aretw0/bloco/pkg/adapters/memory"
	"github.com/aretw0/bloco/pkg/adapters/sqlite"
	"github.com/aretw0/bloco/pkg/core"
)

// ErrUnknownAdapter is returned when WithAdapter names an adapter that does not exist.
var ErrUnknownAdapter = errors.New("unknown adapter")

// Init prepares the storage named by the options.
// The 'uri' argument is adapter-specific: a directory for "fs", a database
// file (or ":memory:") for "sqlite", ignored for "memory".
func Init(uri string, opts ...Option) (core.KV, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initKV(context.Background(), uri, o)
}

func initKV(ctx context.Context, uri string, o *options) (core.KV, error) {
	if o.kv != nil {
		return o.kv, nil
	}

	switch o.adapter {
	case AdapterFS:
		return initFS(ctx, uri, o)
	case AdapterSQLite:
		return initSQLite(uri, o)
	case AdapterMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, o.adapter)
	}
}

// resolvePath applies the dev sandbox to a storage path.
func resolvePath(path string, o *options) string {
	useTemp := o.forceTemp || (IsDevRun() && o.devSafety)
	resolved := ResolveStorePath(path, useTemp)

	if o.logger != nil && useTemp && resolved != filepath.Clean(path) {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolved)
	}
	if IsDevRun() && !o.devSafety && o.logger != nil {
		o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
	}
	return resolved
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(ctx context.Context, path string, o *options) (core.KV, error) {
	store := fs.New(fs.Config{
		Dir:          resolvePath(path, o),
		MustExist:    o.mustExist,
		Perm:         o.perm,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	})
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// initSQLite opens the database file, creating its directory when allowed.
func initSQLite(path string, o *options) (core.KV, error) {
	if path == "" || path == sqlite.MemoryDSN {
		return sqlite.Open(sqlite.MemoryDSN)
	}

	resolved := resolvePath(path, o)
	dir := filepath.Dir(resolved)
	if o.mustExist {
		if _, err := os.Stat(resolved); err != nil {
			return nil, fmt.Errorf("database %s: %w", resolved, err)
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}
	return sqlite.Open(resolved)
}
