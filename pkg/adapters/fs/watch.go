package fs

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/bloco/pkg/core"
)

// Watch implements core.Watchable. It reports writes and removals of keys
// matching pattern ("" matches all) made by any process, including this one.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.KeyEvent, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.config.Dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.config.Dir, err)
	}

	out := make(chan core.KeyEvent)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer s.setWatcherActive(false)
		defer watcher.Close()
		return s.watchLoop(ctx, watcher, pattern, out)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.reportError(fmt.Errorf("watcher stopped: %w", err))
	}))

	return out, nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, out chan<- core.KeyEvent) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			s.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
		}
	}()

	// Events are held until the directory has been quiet for Debounce;
	// only the last event per key is delivered.
	pending := make(map[string]core.KeyEvent)
	var order []string
	settle := time.NewTimer(s.config.Debounce)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			ke, ok := s.mapEvent(event, pattern)
			if !ok {
				continue
			}
			if _, seen := pending[ke.Key]; !seen {
				order = append(order, ke.Key)
			}
			pending[ke.Key] = ke
			settle.Reset(s.config.Debounce)

		case <-settle.C:
			for _, key := range order {
				ke := pending[key]
				s.config.Logger.Debug("key changed", "key", ke.Key, "type", ke.Type)
				select {
				case out <- ke:
				case <-ctx.Done():
					return nil
				}
			}
			clear(pending)
			order = order[:0]

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.reportError(wErr)
		}
	}
}

// mapEvent turns a filesystem event into a key event, filtering temp files,
// foreign files, permission changes and keys outside pattern.
func (s *Store) mapEvent(event fsnotify.Event, pattern string) (core.KeyEvent, bool) {
	key, ok := keyOf(event.Name)
	if !ok {
		return core.KeyEvent{}, false
	}
	if match, _ := doublestar.Match(pattern, key); !match {
		return core.KeyEvent{}, false
	}

	var typ core.KeyEventType
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		typ = core.KeyWritten
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		typ = core.KeyRemoved
	default:
		return core.KeyEvent{}, false
	}
	return core.KeyEvent{Type: typ, Key: key, Timestamp: time.Now().Unix()}, true
}

func (s *Store) reportError(err error) {
	s.config.Logger.Error("fsnotify error", "error", err)
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}
