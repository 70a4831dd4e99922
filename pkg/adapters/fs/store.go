// Package fs stores values as files, one JSON file per key.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/bloco/pkg/core"
)

// Ext is the extension of value files.
const Ext = ".json"

// Config holds the configuration for the filesystem store.
type Config struct {
	Dir       string
	MustExist bool        // fail instead of creating Dir
	Perm      os.FileMode // file mode of value files, 0600 if zero
	Logger    *slog.Logger
	// ErrorHandler receives watcher errors that are otherwise only logged.
	ErrorHandler func(error)
	// Debounce is how long Watch waits for a key to settle, DefaultDebounce if zero.
	Debounce time.Duration
}

// DefaultDebounce coalesces the burst of events one atomic write produces.
const DefaultDebounce = 50 * time.Millisecond

// Store implements core.KV on a directory.
type Store struct {
	mu            sync.RWMutex
	config        Config
	writes        int
	lastWrite     *time.Time
	watcherActive bool
}

// New creates a filesystem store. Call Initialize before use.
func New(config Config) *Store {
	if config.Perm == 0 {
		config.Perm = 0600
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	return &Store{config: config}
}

// Dir returns the directory values are stored in.
func (s *Store) Dir() string {
	return s.config.Dir
}

// Initialize makes sure the directory exists.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.config.Dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("store path does not exist: %s", s.config.Dir)
		}
		if err != nil {
			return fmt.Errorf("stat store path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", s.config.Dir)
		}
		return nil
	}
	if err := os.MkdirAll(s.config.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

// Path returns the file a key is stored in.
func (s *Store) Path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.config.Dir, key+Ext), nil
}

// Get implements core.KV.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set implements core.KV with an atomic replace.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeFileAtomic(path, value, s.config.Perm); err != nil {
		return err
	}

	s.mu.Lock()
	now := time.Now()
	s.writes++
	s.lastWrite = &now
	s.mu.Unlock()

	s.config.Logger.Debug("value written", "key", key, "bytes", len(value))
	return nil
}

// Delete removes a key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys matching a doublestar pattern ("" matches all), sorted.
func (s *Store) Keys(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q", pattern)
	}

	entries, err := os.ReadDir(s.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("list store directory: %w", err)
	}

	var keys []string
	for _, e := range entries {
		key, ok := keyOf(e.Name())
		if !ok || e.IsDir() {
			continue
		}
		if match, _ := doublestar.Match(pattern, key); match {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// keyOf maps a file name back to its key.
func keyOf(name string) (string, bool) {
	name = filepath.Base(name)
	if isTempFile(name) || !strings.HasSuffix(name, Ext) {
		return "", false
	}
	key := strings.TrimSuffix(name, Ext)
	if validateKey(key) != nil {
		return "", false
	}
	return key, true
}

func validateKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return fmt.Errorf("%w: %q", core.ErrInvalidKey, key)
	case strings.ContainsAny(key, `/\:`):
		return fmt.Errorf("%w: %q contains a path separator", core.ErrInvalidKey, key)
	case strings.HasPrefix(key, "."), strings.HasPrefix(key, TempFilePrefix):
		return fmt.Errorf("%w: %q is reserved", core.ErrInvalidKey, key)
	}
	return nil
}

var _ core.KV = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
